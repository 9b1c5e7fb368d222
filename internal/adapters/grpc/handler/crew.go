package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
)

// CrewGrpcHandler は CrewService の gRPC 実装です。
type CrewGrpcHandler struct {
	svc crew.UseCase
}

var _ CrewServiceServer = (*CrewGrpcHandler)(nil)

// NewCrewGrpcHandler は CrewGrpcHandler を生成します。
func NewCrewGrpcHandler(svc crew.UseCase) *CrewGrpcHandler {
	return &CrewGrpcHandler{svc: svc}
}

// CreateCrewMember はクルーを登録します。
func (h *CrewGrpcHandler) CreateCrewMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	var (
		in  crew.CreateCrewMemberInput
		err error
	)
	if in.Name, err = stringValue(req, "name"); err != nil {
		return nil, toStatusError(err)
	}
	if in.EmployeeID, err = stringValue(req, "employee_id"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Position, err = stringValue(req, "position"); err != nil {
		return nil, toStatusError(err)
	}
	if in.HourlyRate, err = numberValue(req, "hourly_rate"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Phone, err = stringValue(req, "phone"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Email, err = stringValue(req, "email"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Username, err = optionalString(req, "username"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Password, err = optionalString(req, "password"); err != nil {
		return nil, toStatusError(err)
	}
	if in.PIN, err = stringValue(req, "pin"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Status, err = optionalStatus(req); err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.svc.CreateCrewMember(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"crew_member": crewMemberFields(created)})
}

// UpdateCrewMember はクルー情報を部分更新します。指定されなかった項目は変更しません。
func (h *CrewGrpcHandler) UpdateCrewMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	var (
		in  crew.UpdateCrewMemberInput
		err error
	)
	if in.ID, err = stringValue(req, "id"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Name, err = optionalString(req, "name"); err != nil {
		return nil, toStatusError(err)
	}
	if in.EmployeeID, err = optionalString(req, "employee_id"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Position, err = optionalString(req, "position"); err != nil {
		return nil, toStatusError(err)
	}
	if in.HourlyRate, err = optionalNumber(req, "hourly_rate"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Phone, err = optionalString(req, "phone"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Email, err = optionalString(req, "email"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Username, err = optionalString(req, "username"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Password, err = optionalString(req, "password"); err != nil {
		return nil, toStatusError(err)
	}
	if in.PIN, err = optionalString(req, "pin"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Status, err = optionalStatus(req); err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.svc.UpdateCrewMember(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"crew_member": crewMemberFields(updated)})
}

// DeleteCrewMember はクルーを削除します。
func (h *CrewGrpcHandler) DeleteCrewMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	id, err := stringValue(req, "id")
	if err != nil {
		return nil, toStatusError(err)
	}
	if err := h.svc.DeleteCrewMember(ctx, crew.DeleteCrewMemberInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{})
}

// GetCrewMember はクルーを取得します。
func (h *CrewGrpcHandler) GetCrewMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	id, err := stringValue(req, "id")
	if err != nil {
		return nil, toStatusError(err)
	}
	found, err := h.svc.GetCrewMember(ctx, crew.GetCrewMemberInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"crew_member": crewMemberFields(found)})
}

// ListCrewMembers はクルーの一覧を取得します。
func (h *CrewGrpcHandler) ListCrewMembers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		in  crew.ListCrewMembersInput
		err error
	)
	if in.Status, err = optionalStatus(req); err != nil {
		return nil, toStatusError(err)
	}
	if in.ClockedIn, err = optionalBool(req, "clocked_in"); err != nil {
		return nil, toStatusError(err)
	}

	members, err := h.svc.ListCrewMembers(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(members))
	for _, m := range members {
		list = append(list, crewMemberFields(m))
	}
	return respond(map[string]any{"crew_members": list})
}

// Login はユーザー名とパスワードで認証します。
func (h *CrewGrpcHandler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	var (
		in  crew.AuthenticateInput
		err error
	)
	if in.Username, err = stringValue(req, "username"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Password, err = stringValue(req, "password"); err != nil {
		return nil, toStatusError(err)
	}

	member, err := h.svc.Authenticate(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"crew_member": crewMemberFields(member)})
}

// LoginWithPIN はクルー ID と PIN で認証します。
func (h *CrewGrpcHandler) LoginWithPIN(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	var (
		in  crew.AuthenticateWithPINInput
		err error
	)
	if in.CrewID, err = stringValue(req, "crew_id"); err != nil {
		return nil, toStatusError(err)
	}
	if in.PIN, err = stringValue(req, "pin"); err != nil {
		return nil, toStatusError(err)
	}

	member, err := h.svc.AuthenticateWithPIN(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"crew_member": crewMemberFields(member)})
}

func optionalStatus(req *structpb.Struct) (*crew.Status, error) {
	raw, err := optionalString(req, "status")
	if err != nil || raw == nil || *raw == "" {
		return nil, err
	}
	status := crew.Status(*raw)
	return &status, nil
}

// crewMemberFields はパスワードと PIN を含めずにクルーを表現します。
func crewMemberFields(m *crew.CrewMember) any {
	if m == nil {
		return nil
	}
	return map[string]any{
		"id":                    m.ID,
		"name":                  m.Name,
		"employee_id":           m.EmployeeID,
		"position":              m.Position,
		"hourly_rate":           m.HourlyRate,
		"phone":                 m.Phone,
		"email":                 m.Email,
		"status":                string(m.Status),
		"username":              stringOrNil(m.Username),
		"currently_clocked":     m.CurrentlyClocked,
		"current_job_id":        stringOrNil(m.CurrentJobID),
		"current_time_entry_id": stringOrNil(m.CurrentTimeEntryID),
		"registered_via_invite": m.RegisteredViaInvite,
		"created_at":            formatTime(m.CreatedAt),
		"updated_at":            formatTime(m.UpdatedAt),
	}
}
