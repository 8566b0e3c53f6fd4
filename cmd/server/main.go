package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/nexusliving/bms/api/handler"
	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/internal/config"
	"github.com/nexusliving/bms/internal/infrastructure/buffer"
	"github.com/nexusliving/bms/internal/infrastructure/monitor"
	"github.com/nexusliving/bms/internal/middleware"
	"github.com/nexusliving/bms/internal/router"
	"github.com/nexusliving/bms/internal/services"
	"github.com/nexusliving/bms/internal/services/lifecycle"
	"github.com/nexusliving/bms/pkg/httpcontext"
	"github.com/nexusliving/bms/pkg/logger"
	"github.com/nexusliving/bms/pkg/token"
	"github.com/nexusliving/bms/usecase"
	agreementUC "github.com/nexusliving/bms/usecase/agreement"
	announcementUC "github.com/nexusliving/bms/usecase/announcement"
	apartmentUC "github.com/nexusliving/bms/usecase/apartment"
	authUC "github.com/nexusliving/bms/usecase/auth"
	couponUC "github.com/nexusliving/bms/usecase/coupon"
	profileUC "github.com/nexusliving/bms/usecase/profile"
	statsUC "github.com/nexusliving/bms/usecase/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.SignalContext(context.Background())
	defer cancel()

	st, err := openStores(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("store initialisation failed", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	var (
		backlog  monitor.Backlog
		deferrer usecase.ProfileDeferrer
		queue    *buffer.Queue
	)
	if st.durable {
		queue, err = buffer.Open(cfg.Buffer.Path)
		if err != nil {
			zapLogger.Fatal("failed to open buffer queue", zap.Error(err))
		}
		manager.Register("buffer", func(ctx context.Context) error {
			return queue.Close()
		})
		backlog = queue
		deferrer = services.NewBufferBridge(queue, zapLogger)
	}

	mon := monitor.New(st.probes, backlog, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if queue != nil {
		bufferProcessor, err := services.NewBufferProcessor(
			queue,
			mon,
			st.users,
			zapLogger,
			services.ProcessorConfig{
				Interval:   cfg.Buffer.SyncInterval,
				BatchSize:  cfg.Buffer.BatchSize,
				MaxRetries: cfg.Buffer.MaxRetry,
				Retention:  cfg.Buffer.Retention,
			},
		)
		if err != nil {
			zapLogger.Fatal("failed to schedule buffer processor", zap.Error(err))
		}
		bufferProcessor.Start()
		manager.Register("buffer_processor", func(ctx context.Context) error {
			bufferProcessor.Stop(ctx)
			return nil
		})
	}

	tokens, err := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		zapLogger.Fatal("token manager", zap.Error(err))
	}

	authUseCase := authUC.New(st.users, st.sessions, tokens, cfg.JWT.TTL, zapLogger)
	profileUseCase := profileUC.New(st.users, deferrer, zapLogger)
	agreementUseCase := agreementUC.New(st.tx, st.agreements, st.apartments, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Agreement:    apiHandler.NewAgreementHandler(agreementUseCase, ctxAdapter, zapLogger),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Apartment:    apiHandler.NewApartmentHandler(apartmentUC.New(st.apartments), ctxAdapter, zapLogger),
		Coupon:       apiHandler.NewCouponHandler(couponUC.New(st.coupons, zapLogger), ctxAdapter, zapLogger),
		Announcement: apiHandler.NewAnnouncementHandler(announcementUC.New(st.announcements), ctxAdapter, zapLogger),
		Stats:        apiHandler.NewStatsHandler(statsUC.New(st.apartments, st.agreements, st.users), ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, cfg.Store.Driver, ctxAdapter, zapLogger),
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RPS,
		Burst:             cfg.RateLimit.Burst,
	}, zapLogger)

	r := router.New(handlers, router.Guards{
		Auth:      middleware.JWTAuth(authUseCase, ctxAdapter, zapLogger),
		Admin:     middleware.RequireRole(profileUseCase, domain.RoleAdmin, ctxAdapter, zapLogger),
		RateLimit: limiter.Middleware(),
	})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store_driver", cfg.Store.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()
	zapLogger.Info("shutting down")

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
