package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/shop-crew-clock/internal/platform/config"
)

// BuildPoolConfig は database 設定とタイムゾーン設定から pgxpool.Config を構築します。
// セッションの timezone は打刻の日付境界と同じゾーンに揃えます。
func BuildPoolConfig(cfg config.DatabaseConfig, clock config.TimeClockConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	// "Local" はサーバー側で解決できないため送らない。
	if zone := strings.TrimSpace(clock.LocationName); zone != "" && zone != "Local" {
		poolCfg.ConnConfig.RuntimeParams["timezone"] = zone
	}

	poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   tracelog.LoggerFunc(logQuery),
		LogLevel: tracelog.LogLevelDebug,
	}

	return poolCfg, nil
}

// logQuery は pgx のトレースをリクエストのロガーへ流します。
func logQuery(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	logger := zerolog.Ctx(ctx)

	var event *zerolog.Event
	switch level {
	case tracelog.LogLevelError:
		event = logger.Error()
	case tracelog.LogLevelWarn:
		event = logger.Warn()
	case tracelog.LogLevelInfo, tracelog.LogLevelDebug:
		event = logger.Debug()
	default:
		event = logger.Trace()
	}
	event.Fields(data).Str("component", "pgx").Msg(msg)
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
func NewPool(ctx context.Context, cfg config.DatabaseConfig, clock config.TimeClockConfig) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg, clock)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}
