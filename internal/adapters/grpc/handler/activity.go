package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
)

// ActivityLister は直近のアクティビティを返す抽象です。
type ActivityLister interface {
	ListRecent(ctx context.Context, limit int) ([]*activity.Entry, error)
}

// ActivityGrpcHandler は ActivityService の gRPC 実装です。
type ActivityGrpcHandler struct {
	svc ActivityLister
}

var _ ActivityServiceServer = (*ActivityGrpcHandler)(nil)

// NewActivityGrpcHandler は ActivityGrpcHandler を生成します。
func NewActivityGrpcHandler(svc ActivityLister) *ActivityGrpcHandler {
	return &ActivityGrpcHandler{svc: svc}
}

// ListRecentActivities は新しい順にアクティビティを返します。limit は 1 から 20 の範囲に丸めます。
func (h *ActivityGrpcHandler) ListRecentActivities(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, err := intValue(req, "limit")
	if err != nil {
		return nil, toStatusError(err)
	}

	entries, err := h.svc.ListRecent(ctx, limit)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, map[string]any{
			"id":         e.ID,
			"message":    e.Message,
			"created_at": formatTime(e.CreatedAt),
		})
	}
	return respond(map[string]any{"activities": list})
}
