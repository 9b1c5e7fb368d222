package timesheet

import (
	"sort"
	"time"

	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

// Range は集計対象の期間です。Start と End は暦日として扱い、両端の日を含みます。
type Range struct {
	Start  time.Time
	End    time.Time
	CrewID *string
}

// Line は集計結果に含まれる 1 件の打刻です。
type Line struct {
	Entry     *timeclock.TimeEntry
	Open      bool
	LiveHours float64
}

// CrewSheet はクルー単位の集計結果です。
type CrewSheet struct {
	CrewID     string
	CrewName   string
	HourlyRate float64
	Lines      []Line
	TotalHours float64
	OpenHours  float64
	TotalCost  float64
}

// Bounds は loc における [開始日 00:00:00, 終了日 23:59:59] を返します。
func Bounds(start, end time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	from := startOfDay(start, loc)
	to := startOfDay(end, loc).AddDate(0, 0, 1).Add(-time.Second)
	return from, to
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Aggregate は打刻をクルーごとにまとめ、勤務時間と人件費を算出します。
// 人件費は集計時点の時給で計算し、クルーが存在しない場合は 0 とします。
func Aggregate(entries []*timeclock.TimeEntry, members []*crew.CrewMember, r Range, now time.Time, loc *time.Location) []*CrewSheet {
	from, to := Bounds(r.Start, r.End, loc)

	byID := make(map[string]*crew.CrewMember, len(members))
	for _, m := range members {
		if m != nil {
			byID[m.ID] = m
		}
	}

	sheets := make(map[string]*CrewSheet)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if r.CrewID != nil && entry.CrewID != *r.CrewID {
			continue
		}
		if entry.ClockIn.Before(from) || entry.ClockIn.After(to) {
			continue
		}

		sheet, ok := sheets[entry.CrewID]
		if !ok {
			sheet = &CrewSheet{CrewID: entry.CrewID, CrewName: entry.CrewName}
			if member, found := byID[entry.CrewID]; found {
				sheet.CrewName = member.Name
				sheet.HourlyRate = member.HourlyRate
			}
			sheets[entry.CrewID] = sheet
		}

		line := Line{Entry: entry, Open: entry.IsOpen(), LiveHours: entry.LiveHours(now)}
		if line.Open {
			sheet.OpenHours += line.LiveHours
		} else {
			sheet.TotalHours += entry.Duration
		}
		sheet.Lines = append(sheet.Lines, line)
	}

	result := make([]*CrewSheet, 0, len(sheets))
	for _, sheet := range sheets {
		sort.SliceStable(sheet.Lines, func(i, j int) bool {
			return sheet.Lines[i].Entry.ClockIn.Before(sheet.Lines[j].Entry.ClockIn)
		})
		sheet.TotalCost = sheet.TotalHours * sheet.HourlyRate
		result = append(result, sheet)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CrewName != result[j].CrewName {
			return result[i].CrewName < result[j].CrewName
		}
		return result[i].CrewID < result[j].CrewID
	})
	return result
}
