package handler

import (
	"context"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

// TimeClockGrpcHandler は TimeClockService の gRPC 実装です。
// crew_id を省略した呼び出しはメタデータ x-crew-id のクルーを対象にします。
type TimeClockGrpcHandler struct {
	svc timeclock.UseCase
}

var _ TimeClockServiceServer = (*TimeClockGrpcHandler)(nil)

// NewTimeClockGrpcHandler は TimeClockGrpcHandler を生成します。
func NewTimeClockGrpcHandler(svc timeclock.UseCase) *TimeClockGrpcHandler {
	return &TimeClockGrpcHandler{svc: svc}
}

// ClockIn は出勤を記録します。
func (h *TimeClockGrpcHandler) ClockIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	crewID, err := stringValue(req, "crew_id")
	if err != nil {
		return nil, toStatusError(err)
	}
	entry, err := h.svc.ClockIn(ctx, timeclock.ClockInInput{CrewID: crewID})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"time_entry": timeEntryFields(entry)})
}

// ClockOut は退勤を記録します。追跡中の打刻が失われていた場合 time_entry は null です。
func (h *TimeClockGrpcHandler) ClockOut(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	crewID, err := stringValue(req, "crew_id")
	if err != nil {
		return nil, toStatusError(err)
	}
	entry, err := h.svc.ClockOut(ctx, timeclock.ClockOutInput{CrewID: crewID})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"time_entry": timeEntryFields(entry)})
}

// SetCurrentJob は勤務中の打刻に作業を紐付けます。job_id が空または null の場合は解除します。
func (h *TimeClockGrpcHandler) SetCurrentJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	crewID, err := stringValue(req, "crew_id")
	if err != nil {
		return nil, toStatusError(err)
	}
	jobID, err := optionalString(req, "job_id")
	if err != nil {
		return nil, toStatusError(err)
	}
	if jobID != nil && strings.TrimSpace(*jobID) == "" {
		jobID = nil
	}

	entry, err := h.svc.SetCurrentJob(ctx, timeclock.SetCurrentJobInput{CrewID: crewID, JobID: jobID})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"time_entry": timeEntryFields(entry)})
}

// EditTimeEntry は打刻を管理者として書き換えます。
func (h *TimeClockGrpcHandler) EditTimeEntry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	var (
		in  timeclock.EditTimeEntryInput
		err error
	)
	if in.ID, err = stringValue(req, "id"); err != nil {
		return nil, toStatusError(err)
	}
	clockIn, err := optionalTime(req, "clock_in")
	if err != nil {
		return nil, toStatusError(err)
	}
	if clockIn != nil {
		in.ClockIn = *clockIn
	}
	if in.ClockOut, err = optionalTime(req, "clock_out"); err != nil {
		return nil, toStatusError(err)
	}
	if in.JobID, err = optionalString(req, "job_id"); err != nil {
		return nil, toStatusError(err)
	}

	entry, err := h.svc.EditTimeEntry(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"time_entry": timeEntryFields(entry)})
}

// DeleteTimeEntry は打刻を削除します。
func (h *TimeClockGrpcHandler) DeleteTimeEntry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	id, err := stringValue(req, "id")
	if err != nil {
		return nil, toStatusError(err)
	}
	if err := h.svc.DeleteTimeEntry(ctx, timeclock.DeleteTimeEntryInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{})
}

// GetTimeEntry は打刻を取得します。
func (h *TimeClockGrpcHandler) GetTimeEntry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	id, err := stringValue(req, "id")
	if err != nil {
		return nil, toStatusError(err)
	}
	entry, err := h.svc.GetTimeEntry(ctx, timeclock.GetTimeEntryInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"time_entry": timeEntryFields(entry)})
}

func timeEntryFields(e *timeclock.TimeEntry) any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"id":             e.ID,
		"crew_id":        e.CrewID,
		"crew_name":      e.CrewName,
		"clock_in":       formatTime(e.ClockIn),
		"clock_out":      formatTimePtr(e.ClockOut),
		"job_id":         stringOrNil(e.JobID),
		"job_title":      stringOrNil(e.JobTitle),
		"duration_hours": e.Duration,
		"open":           e.IsOpen(),
		"created_at":     formatTime(e.CreatedAt),
		"updated_at":     formatTime(e.UpdatedAt),
	}
}
