package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nexusliving/bms/internal/config"
	"github.com/nexusliving/bms/internal/infrastructure/monitor"
	pgInfra "github.com/nexusliving/bms/internal/infrastructure/postgres"
	redisInfra "github.com/nexusliving/bms/internal/infrastructure/redis"
	"github.com/nexusliving/bms/internal/seed"
	"github.com/nexusliving/bms/internal/services/lifecycle"
	"github.com/nexusliving/bms/repository"
	"github.com/nexusliving/bms/repository/memory"
	"github.com/nexusliving/bms/repository/postgres"
	redisRepo "github.com/nexusliving/bms/repository/redis"
)

// stores bundles the repositories selected by STORE_DRIVER.
type stores struct {
	tx            repository.Transactor
	users         repository.UserRepository
	agreements    repository.AgreementRepository
	apartments    repository.ApartmentRepository
	coupons       repository.CouponRepository
	announcements repository.AnnouncementRepository
	sessions      repository.SessionRepository
	probes        []monitor.Probe
	// durable is false when state lives only in this process.
	durable bool
}

func openStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return openMemory(ctx, logger)
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, manager, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openMemory(ctx context.Context, logger *zap.Logger) (*stores, error) {
	store := memory.New()
	if _, err := seed.Apply(ctx, store.Apartments(), logger); err != nil {
		return nil, err
	}
	logger.Warn("using in-memory store; state is lost on restart")
	return &stores{
		tx:            store,
		users:         store.Users(),
		agreements:    store.Agreements(),
		apartments:    store.Apartments(),
		coupons:       store.Coupons(),
		announcements: store.Announcements(),
		sessions:      store.Sessions(),
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*stores, error) {
	if err := pgInfra.RunMigrations(cfg.Database, cfg.Migrations, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, cfg.AppName, logger)
	if err != nil {
		return nil, err
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis, cfg.AppName, logger)
	if err != nil {
		return nil, err
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	return &stores{
		tx:            postgres.NewStore(pool),
		users:         postgres.NewUserRepository(pool),
		agreements:    postgres.NewAgreementRepository(pool),
		apartments:    postgres.NewApartmentRepository(pool),
		coupons:       postgres.NewCouponRepository(pool),
		announcements: postgres.NewAnnouncementRepository(pool),
		sessions:      redisRepo.NewSessionRepository(redisClient),
		probes:        []monitor.Probe{monitor.PostgresProbe(pool), monitor.RedisProbe(redisClient)},
		durable:       true,
	}, nil
}
