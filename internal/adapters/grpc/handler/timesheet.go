package handler

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/shop-crew-clock/internal/core/timesheet"
)

// TimesheetGrpcHandler は TimesheetService の gRPC 実装です。
// 日付は loc の暦日として解釈します。
type TimesheetGrpcHandler struct {
	svc timesheet.UseCase
	loc *time.Location
}

var _ TimesheetServiceServer = (*TimesheetGrpcHandler)(nil)

// NewTimesheetGrpcHandler は TimesheetGrpcHandler を生成します。
func NewTimesheetGrpcHandler(svc timesheet.UseCase, loc *time.Location) *TimesheetGrpcHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TimesheetGrpcHandler{svc: svc, loc: loc}
}

// Aggregate は期間内の勤務をクルーごとに集計します。
func (h *TimesheetGrpcHandler) Aggregate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		in  timesheet.AggregateInput
		err error
	)
	if in.StartDate, err = dateValue(req, "start_date", h.loc); err != nil {
		return nil, toStatusError(err)
	}
	if in.EndDate, err = dateValue(req, "end_date", h.loc); err != nil {
		return nil, toStatusError(err)
	}
	crewID, err := optionalString(req, "crew_id")
	if err != nil {
		return nil, toStatusError(err)
	}
	if crewID != nil && *crewID != "" {
		in.CrewID = crewID
	}

	sheets, err := h.svc.Aggregate(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	var totalHours, totalCost float64
	list := make([]any, 0, len(sheets))
	for _, sheet := range sheets {
		list = append(list, crewSheetFields(sheet))
		totalHours += sheet.TotalHours
		totalCost += sheet.TotalCost
	}
	return respond(map[string]any{
		"sheets":      list,
		"total_hours": totalHours,
		"total_cost":  totalCost,
	})
}

// TodayLog は当日の勤務記録を返します。
func (h *TimesheetGrpcHandler) TodayLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	crewID, err := stringValue(req, "crew_id")
	if err != nil {
		return nil, toStatusError(err)
	}
	sheet, err := h.svc.TodayLog(ctx, timesheet.TodayLogInput{CrewID: crewID})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"sheet": crewSheetFields(sheet)})
}

// CrewHistory は直近 days 日分の勤務記録を返します。
func (h *TimesheetGrpcHandler) CrewHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	var (
		in  timesheet.CrewHistoryInput
		err error
	)
	if in.CrewID, err = stringValue(req, "crew_id"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Days, err = intValue(req, "days"); err != nil {
		return nil, toStatusError(err)
	}

	sheet, err := h.svc.CrewHistory(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"sheet": crewSheetFields(sheet)})
}

func crewSheetFields(s *timesheet.CrewSheet) any {
	if s == nil {
		return nil
	}

	lines := make([]any, 0, len(s.Lines))
	for _, line := range s.Lines {
		lines = append(lines, map[string]any{
			"time_entry": timeEntryFields(line.Entry),
			"open":       line.Open,
			"live_hours": line.LiveHours,
		})
	}

	return map[string]any{
		"crew_id":     s.CrewID,
		"crew_name":   s.CrewName,
		"hourly_rate": s.HourlyRate,
		"lines":       lines,
		"total_hours": s.TotalHours,
		"open_hours":  s.OpenHours,
		"total_cost":  s.TotalCost,
	}
}
