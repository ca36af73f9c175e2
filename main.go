package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gocron "github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Edna112/viral-boast-smm-sub000/config"
	"github.com/Edna112/viral-boast-smm-sub000/controllers/admins"
	"github.com/Edna112/viral-boast-smm-sub000/controllers/users"
	"github.com/Edna112/viral-boast-smm-sub000/database"
	"github.com/Edna112/viral-boast-smm-sub000/routes"
	"github.com/Edna112/viral-boast-smm-sub000/services"
	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

func main() {
	// Load .env if present without overwriting already-set environment variables.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := utils.InitLogger(cfg.LogLevel, cfg.LogPath); err != nil {
		log.Fatalf("logger: %v", err)
	}
	logger := utils.Logger
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.String("tz", cfg.Timezone), zap.Error(err))
	}

	db, err := database.Connect()
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// Day markers live in Redis when configured so the once-per-day archival
	// guard is shared across replicas; otherwise fall back to process memory.
	var markers services.DayMarkerStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		markers = services.NewRedisMarkerStore(rdb, "")
	} else {
		logger.Warn("REDIS_ADDR not set, day markers are process-local")
		markers = services.NewMemoryMarkerStore()
	}

	clock := clockwork.NewRealClock()
	archiver := services.NewSubmissionArchiver(db, clock, markers, loc, logger)
	ledger := services.NewLedger(db, clock, logger)
	memberships := &services.GormMembershipLookup{DB: db}
	distributor := services.NewTaskDistributor(db, clock, memberships, archiver, loc, logger)
	settlement := services.NewSettlement(db, ledger, clock, logger)

	users.Setup(distributor, ledger)
	admins.Setup(settlement, archiver)

	// Nightly jobs: sweep submissions into history and expire overdue
	// assignments. The sweep keeps its own once-per-day guard, so lazy
	// triggering from the first request of the day stays safe alongside this.
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		logger.Fatal("scheduler init failed", zap.Error(err))
	}
	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(cfg.ArchivalHour), 5, 0))),
		gocron.NewTask(func() {
			if _, err := archiver.RunArchivalSweepIfNeeded(context.Background()); err != nil {
				logger.Error("scheduled archival sweep failed", zap.Error(err))
			}
			if n, err := distributor.ExpireOverdueAssignments(); err != nil {
				logger.Error("assignment expiry failed", zap.Error(err))
			} else if n > 0 {
				logger.Info("expired overdue assignments", zap.Int64("count", n))
			}
		}),
	)
	if err != nil {
		logger.Fatal("scheduler job failed", zap.Error(err))
	}
	sched.Start()
	defer func() { _ = sched.Shutdown() }()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.InitRouter(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
