package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/nexusliving/bms/internal/config"
	pgInfra "github.com/nexusliving/bms/internal/infrastructure/postgres"
	"github.com/nexusliving/bms/internal/seed"
	"github.com/nexusliving/bms/pkg/logger"
	"github.com/nexusliving/bms/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName + "-seed",
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Store.Driver != config.StoreDriverPostgres {
		zapLogger.Fatal("seeding requires STORE_DRIVER=postgres; the memory store seeds itself on boot")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := pgInfra.RunMigrations(cfg.Database, cfg.Migrations, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, cfg.AppName+"-seed", zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()

	if _, err := seed.Apply(ctx, postgres.NewApartmentRepository(pool), zapLogger); err != nil {
		zapLogger.Fatal("seeding failed", zap.Error(err))
	}
}
