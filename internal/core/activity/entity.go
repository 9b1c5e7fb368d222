package activity

import "time"

// MaxEntries は保持するアクティビティの最大件数です。
const MaxEntries = 20

// Entry は監査用のアクティビティ記録です。
type Entry struct {
	ID        string
	Message   string
	CreatedAt time.Time
}
