package server

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/shop-crew-clock/internal/core/session"
)

// CrewIDMetadataKey は操作中のクルー ID を運ぶメタデータのキーです。
const CrewIDMetadataKey = "x-crew-id"

// SessionInterceptor はメタデータ x-crew-id をセッションとしてコンテキストに格納します。
func SessionInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(CrewIDMetadataKey); len(values) > 0 {
				crewID := strings.TrimSpace(values[0])
				ctx = session.WithCrewID(ctx, crewID)
				if crewID != "" {
					ctx = zerolog.Ctx(ctx).With().Str("acting_crew_id", crewID).Logger().WithContext(ctx)
				}
			}
		}
		return next(ctx, req)
	}
}

// LoggingInterceptor はリクエスト単位のロガーをコンテキストに載せ、結果を記録します。
func LoggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		reqLogger := logger.With().Str("method", info.FullMethod).Logger()
		ctx = reqLogger.WithContext(ctx)

		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		event := reqLogger.Info()
		switch code {
		case codes.OK:
		case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
			event = reqLogger.Error().Err(err)
		default:
			event = reqLogger.Warn().Err(err)
		}
		event.Str("code", code.String()).Dur("latency", time.Since(start)).Msg("handled request")

		return resp, err
	}
}
