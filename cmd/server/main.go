package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/shop-crew-clock/internal/adapters/repository/memory"
	"github.com/ogurasousui/shop-crew-clock/internal/adapters/repository/postgres"
	"github.com/ogurasousui/shop-crew-clock/internal/app"
	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
	"github.com/ogurasousui/shop-crew-clock/internal/platform/config"
	pg "github.com/ogurasousui/shop-crew-clock/internal/platform/db/postgres"
	"github.com/ogurasousui/shop-crew-clock/internal/platform/logging"
	"github.com/ogurasousui/shop-crew-clock/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	ctx = logger.WithContext(ctx)

	storage, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
	}
	defer closeStorage()

	services := app.Build(storage, app.Options{
		Location: cfg.TimeClock.Location,
		Invitation: invitation.Options{
			DefaultExpiryHours: cfg.Invitation.DefaultExpiryHours,
			RequireUsername:    cfg.Invitation.UsernameRequired(),
		},
	})
	grpcServer := server.New(cfg.Server.ListenAddr, services.Handlers(cfg.TimeClock.Location), logger)

	if err := grpcServer.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (app.Storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		var opts []memory.Option
		if cfg.Storage.SnapshotPath != "" {
			opts = append(opts, memory.WithSnapshotPath(cfg.Storage.SnapshotPath))
		}
		store, err := memory.NewStore(opts...)
		if err != nil {
			return app.Storage{}, nil, err
		}
		logger.Info().Str("snapshot_path", cfg.Storage.SnapshotPath).Msg("using in-memory storage")
		return app.Storage{
			Crew:        memory.NewCrewRepository(store),
			TimeEntries: memory.NewTimeEntryRepository(store),
			Invitations: memory.NewInvitationRepository(store),
			Activities:  memory.NewActivityRepository(store),
			Jobs:        memory.NewJobRepository(store),
			Tx:          memory.NewTransactionManager(store),
		}, func() {}, nil
	default:
		pool, err := pg.NewPool(ctx, cfg.Database, cfg.TimeClock)
		if err != nil {
			return app.Storage{}, nil, err
		}
		logger.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("using postgres storage")
		return app.Storage{
			Crew:        postgres.NewCrewRepository(pool),
			TimeEntries: postgres.NewTimeEntryRepository(pool),
			Invitations: postgres.NewInvitationRepository(pool),
			Activities:  postgres.NewActivityRepository(pool),
			Jobs:        postgres.NewJobRepository(pool),
			Tx:          pg.NewTransactionManager(pool),
		}, pool.Close, nil
	}
}
