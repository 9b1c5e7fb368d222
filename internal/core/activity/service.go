package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Recorder は各ユースケースが利用する監査ログの書き込み口です。
type Recorder interface {
	Record(ctx context.Context, format string, args ...any)
}

// Service はアクティビティの記録と参照をまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// Record はメッセージを記録します。失敗しても呼び出し元には返さずログに残します。
func (s *Service) Record(ctx context.Context, format string, args ...any) {
	if s == nil || s.repo == nil {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	entry := &Entry{Message: message, CreatedAt: s.clock.Now()}
	if err := s.repo.Append(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("activity", message).Msg("failed to append activity")
	}
}

// ListRecent は新しい順にアクティビティを返します。
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}
	return s.repo.ListRecent(ctx, limit)
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, string, ...any) {}

// Discard は何も記録しない Recorder です。
var Discard Recorder = noopRecorder{}
