package crew

import "time"

// Status はクルーの在籍状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// CrewMember はクルー（作業員）エンティティです。
// CurrentlyClocked が true のとき CurrentTimeEntryID は未締めの打刻を指します。
type CrewMember struct {
	ID                  string
	Name                string
	EmployeeID          string
	Position            string
	HourlyRate          float64
	Phone               string
	Email               string
	Status              Status
	Username            *string
	Password            *string
	PIN                 string
	CurrentlyClocked    bool
	CurrentJobID        *string
	CurrentTimeEntryID  *string
	RegisteredViaInvite bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsActive は在籍中かどうかを返します。
func (m *CrewMember) IsActive() bool {
	return m != nil && m.Status == StatusActive
}

// TracksEntry は指定した打刻を現在の勤務として追跡しているかを返します。
func (m *CrewMember) TracksEntry(entryID string) bool {
	return m != nil && m.CurrentTimeEntryID != nil && *m.CurrentTimeEntryID == entryID
}

// ClockOff は打刻状態を未出勤に戻します。
func (m *CrewMember) ClockOff() {
	m.CurrentlyClocked = false
	m.CurrentJobID = nil
	m.CurrentTimeEntryID = nil
}
