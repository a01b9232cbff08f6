package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/inkwell-journal/internal/config"
	"github.com/iliyamo/inkwell-journal/internal/database"
	"github.com/iliyamo/inkwell-journal/internal/handler"
	"github.com/iliyamo/inkwell-journal/internal/journal"
	"github.com/iliyamo/inkwell-journal/internal/logger"
	"github.com/iliyamo/inkwell-journal/internal/middleware"
	"github.com/iliyamo/inkwell-journal/internal/queue"
	"github.com/iliyamo/inkwell-journal/internal/repository"
	"github.com/iliyamo/inkwell-journal/internal/router"
	"github.com/iliyamo/inkwell-journal/internal/service"
)

func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	events := journal.NewBroadcaster(lg.Named("events"))
	svc := journal.NewService(repository.NewEntryRepo(db), events,
		journal.WithLogger(lg.Named("journal")),
		journal.WithLocation(cfg.Location()),
		journal.WithSecretCost(cfg.BcryptCost),
	)

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb == nil {
		lg.Warn("redis unavailable, analytics cache and unlock limiter disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
		if inv := service.NewCacheInvalidator(rdb, cfg.Cache.Prefix, lg); inv != nil {
			svc.Subscribe(inv.Listener)
		}
	}

	if cfg.Queue.Enabled() {
		svc.Subscribe(service.NewPublisher(cfg.Queue, lg).Listener)
		if cfg.Queue.ConsumerEnabled {
			go func() {
				if err := queue.StartAuditConsumer(ctx, cfg.Queue, lg); err != nil && !errors.Is(err, context.Canceled) {
					lg.Error("audit consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(lg))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), lg), cfg.JWTSecret)
	router.RegisterJournal(e, router.JournalRoutes{
		Entries:     handler.NewEntryHandler(svc),
		Analytics:   handler.NewAnalyticsHandler(svc, cfg.TrendMonthsBack, cfg.StreakLookbackDays),
		JWTSecret:   cfg.JWTSecret,
		Cache:       middleware.NewAnalyticsCache(cfg.Cache, rdb, cfg.Location()),
		UnlockLimit: middleware.NewUnlockLimiter(cfg.Unlock, rdb),
	})

	addr := ":" + cfg.Port
	lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("timezone", cfg.Location().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
