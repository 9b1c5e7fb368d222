package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
)

// InvitationGrpcHandler は InvitationService の gRPC 実装です。
type InvitationGrpcHandler struct {
	svc invitation.UseCase
}

var _ InvitationServiceServer = (*InvitationGrpcHandler)(nil)

// NewInvitationGrpcHandler は InvitationGrpcHandler を生成します。
func NewInvitationGrpcHandler(svc invitation.UseCase) *InvitationGrpcHandler {
	return &InvitationGrpcHandler{svc: svc}
}

// IssueInvitation は招待コードを発行します。
func (h *InvitationGrpcHandler) IssueInvitation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	var (
		in  invitation.IssueInput
		err error
	)
	if in.Position, err = stringValue(req, "position"); err != nil {
		return nil, toStatusError(err)
	}
	if in.HourlyRate, err = numberValue(req, "hourly_rate"); err != nil {
		return nil, toStatusError(err)
	}
	if in.ExpiryHours, err = intValue(req, "expiry_hours"); err != nil {
		return nil, toStatusError(err)
	}

	issued, err := h.svc.Issue(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"invitation": invitationFields(issued)})
}

// ResolveInvitation はコードが登録に利用できるかを確認します。
func (h *InvitationGrpcHandler) ResolveInvitation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	code, err := stringValue(req, "code")
	if err != nil {
		return nil, toStatusError(err)
	}
	resolved, err := h.svc.Resolve(ctx, invitation.ResolveInput{Code: code})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"invitation": invitationFields(resolved)})
}

// RedeemInvitation は招待コードでクルーを登録します。
func (h *InvitationGrpcHandler) RedeemInvitation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	var in invitation.RedeemInput
	fields := []struct {
		key  string
		dest *string
	}{
		{"code", &in.Code},
		{"name", &in.Name},
		{"employee_id", &in.EmployeeID},
		{"phone", &in.Phone},
		{"email", &in.Email},
		{"username", &in.Username},
		{"password", &in.Password},
		{"password_confirm", &in.PasswordConfirm},
		{"pin", &in.PIN},
	}
	for _, f := range fields {
		v, err := stringValue(req, f.key)
		if err != nil {
			return nil, toStatusError(err)
		}
		*f.dest = v
	}

	result, err := h.svc.Redeem(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{
		"crew_member": crewMemberFields(result.Member),
		"invitation":  invitationFields(result.Invitation),
	})
}

// RevokeInvitation は未使用の招待を取り消します。
func (h *InvitationGrpcHandler) RevokeInvitation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	id, err := stringValue(req, "id")
	if err != nil {
		return nil, toStatusError(err)
	}
	revoked, err := h.svc.Revoke(ctx, invitation.RevokeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"invitation": invitationFields(revoked)})
}

// ListInvitations は招待を新しい順に返します。
func (h *InvitationGrpcHandler) ListInvitations(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	invitations, err := h.svc.List(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(invitations))
	for _, inv := range invitations {
		list = append(list, invitationFields(inv))
	}
	return respond(map[string]any{"invitations": list})
}

// GetInvitation は招待を取得します。
func (h *InvitationGrpcHandler) GetInvitation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}

	id, err := stringValue(req, "id")
	if err != nil {
		return nil, toStatusError(err)
	}
	found, err := h.svc.Get(ctx, invitation.GetInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"invitation": invitationFields(found)})
}

func invitationFields(inv *invitation.Invitation) any {
	if inv == nil {
		return nil
	}
	return map[string]any{
		"id":          inv.ID,
		"code":        inv.Code,
		"position":    inv.Position,
		"hourly_rate": inv.HourlyRate,
		"status":      string(inv.Status),
		"created_at":  formatTime(inv.CreatedAt),
		"expires_at":  formatTime(inv.ExpiresAt),
		"used_by":     stringOrNil(inv.UsedBy),
		"used_at":     formatTimePtr(inv.UsedAt),
	}
}
