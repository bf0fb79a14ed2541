package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // optional .env file for local runs
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/vidly/internal/config"
	"github.com/iliyamo/vidly/internal/database"
	"github.com/iliyamo/vidly/internal/handler"
	"github.com/iliyamo/vidly/internal/logging"
	"github.com/iliyamo/vidly/internal/metrics"
	"github.com/iliyamo/vidly/internal/middleware"
	"github.com/iliyamo/vidly/internal/queue"
	"github.com/iliyamo/vidly/internal/repository"
	"github.com/iliyamo/vidly/internal/router"
	"github.com/iliyamo/vidly/internal/service"
	"github.com/iliyamo/vidly/internal/validation"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log)
	logger.WithField("env", cfg.Env).Info("starting vidly")

	db, err := database.Open(cfg.Database())
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	// Redis is optional: cache and rate limit fall back to pass-through.
	var rdb *redis.Client
	if rc, err := config.NewRedisClient(config.LoadRedisConfig()); err != nil {
		logger.WithError(err).Warn("redis unavailable; cache and rate limit disabled")
	} else {
		rdb = rc
		defer rdb.Close()
	}

	m := metrics.New()

	genres := repository.NewGenreRepo(db)
	memberships := repository.NewMembershipTypeRepo(db)
	movies := repository.NewMovieRepo(db)
	customers := repository.NewCustomerRepo(db)
	rentals := repository.NewRentalRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	events := config.LoadEventsConfig()
	var publisher handler.RentalEventPublisher
	if events.Enabled {
		publisher = service.NewRentalPublisher(events.URL, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if events.ConsumerEnabled {
		consumer := queue.NewConsumer(events.URL, events.LogDir, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("rental consumer stopped")
			}
		}()
	}

	go service.RunTokenJanitor(ctx, tokens, time.Hour, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger))

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, logger)

	router.RegisterRoutes(e, db, m)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, logger), cfg.JWTSecret)
	router.RegisterCatalog(e, handler.NewCatalogHandler(genres, memberships, movies, m), cache, cfg.JWTSecret)
	router.RegisterStaff(e,
		handler.NewCustomerHandler(customers, rentals, validation.NewCustomerValidator(time.Now), m),
		handler.NewRentalHandler(rentals, publisher, m, logger),
		cache, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited")
}
