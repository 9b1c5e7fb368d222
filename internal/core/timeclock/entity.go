package timeclock

import "time"

// TimeEntry は 1 回分の勤務打刻です。
// CrewName と JobTitle は記録時点の値を保持し、元データの変更には追従しません。
type TimeEntry struct {
	ID        string
	CrewID    string
	CrewName  string
	ClockIn   time.Time
	ClockOut  *time.Time
	JobID     *string
	JobTitle  *string
	Duration  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen は退勤が記録されていないかを返します。
func (e *TimeEntry) IsOpen() bool {
	return e != nil && e.ClockOut == nil
}

// Close は退勤時刻を設定し勤務時間を確定します。
func (e *TimeEntry) Close(at time.Time) {
	clockOut := at
	e.ClockOut = &clockOut
	e.Duration = HoursBetween(e.ClockIn, clockOut)
}

// Reopen は退勤時刻を取り消します。
func (e *TimeEntry) Reopen() {
	e.ClockOut = nil
	e.Duration = 0
}

// LiveHours は勤務中であれば now までの経過時間、締め済みであれば確定した勤務時間を返します。
func (e *TimeEntry) LiveHours(now time.Time) float64 {
	if e.IsOpen() {
		return HoursBetween(e.ClockIn, now)
	}
	return e.Duration
}

// BindJob は作業の参照とその時点の作業名を記録します。job が nil の場合は解除します。
func (e *TimeEntry) BindJob(job *Job) {
	if job == nil {
		e.JobID = nil
		e.JobTitle = nil
		return
	}
	id := job.ID
	title := job.Title
	e.JobID = &id
	e.JobTitle = &title
}

// HoursBetween は 2 時刻の差を時間単位で返します。負の値は丸めません。
func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}

// Job は打刻から参照される作業の読み取り専用ビューです。
type Job struct {
	ID        string
	Title     string
	Equipment string
	Status    string
	Priority  string
}
