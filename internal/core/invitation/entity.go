package invitation

import "time"

// Status は招待の状態を表します。
type Status string

const (
	StatusPending Status = "pending"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// Invitation はクルー登録用の招待コードです。
type Invitation struct {
	ID         string
	Code       string
	Position   string
	HourlyRate float64
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Status     Status
	UsedBy     *string
	UsedAt     *time.Time
}

// EffectiveStatus は保存された状態と有効期限から現時点の状態を導出します。
func EffectiveStatus(status Status, expiresAt, now time.Time) Status {
	if status == StatusPending && now.After(expiresAt) {
		return StatusExpired
	}
	return status
}

// EffectiveStatus は now 時点の状態を返します。
func (i *Invitation) EffectiveStatus(now time.Time) Status {
	return EffectiveStatus(i.Status, i.ExpiresAt, now)
}

// IsLapsed は保存上は未使用のまま期限切れになっているかを返します。
func (i *Invitation) IsLapsed(now time.Time) bool {
	return i.Status == StatusPending && i.EffectiveStatus(now) == StatusExpired
}
