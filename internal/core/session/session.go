package session

import (
	"context"
	"errors"
	"strings"
)

// ErrNoSession は操作主体のクルーが特定できない場合に返却されます。
var ErrNoSession = errors.New("session: acting crew member is not identified")

type crewIDContextKey struct{}

// IdentitySource は「現在操作しているクルー」を解決する抽象です。
type IdentitySource interface {
	ActingCrewID(ctx context.Context) (string, error)
}

// WithCrewID は操作主体のクルー ID をコンテキストに格納します。
func WithCrewID(ctx context.Context, crewID string) context.Context {
	trimmed := strings.TrimSpace(crewID)
	if trimmed == "" {
		return ctx
	}
	return context.WithValue(ctx, crewIDContextKey{}, trimmed)
}

// CrewIDFromContext はコンテキストからクルー ID を取り出します。
func CrewIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(crewIDContextKey{}).(string)
	return id, ok && id != ""
}

// ContextIdentity はコンテキストに格納されたクルー ID を用いる IdentitySource です。
type ContextIdentity struct{}

// ActingCrewID はコンテキストのクルー ID を返します。
func (ContextIdentity) ActingCrewID(ctx context.Context) (string, error) {
	id, ok := CrewIDFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}
	return id, nil
}

// Resolve は明示的に指定された ID を優先し、空の場合は IdentitySource から解決します。
func Resolve(ctx context.Context, src IdentitySource, explicit string) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed, nil
	}
	if src == nil {
		return "", ErrNoSession
	}
	return src.ActingCrewID(ctx)
}
