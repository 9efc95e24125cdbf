package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-api/auth"
	"restaurant-api/config"
	"restaurant-api/events"
	"restaurant-api/handlers"
	"restaurant-api/logging"
	"restaurant-api/report"
	"restaurant-api/routes"
	"restaurant-api/seed"
	"restaurant-api/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	seedOnly := flag.Bool("seed", false, "load development fixtures and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}
	cfg := config.Load()

	logger := logging.New(os.Stdout, logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg.DB)
	if err != nil {
		logger.Error("database unavailable", slog.Any("error", err))
		os.Exit(1)
	}
	gw := store.New(db)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	if *seedOnly {
		s := &seed.Seeder{Store: gw, Hasher: hasher, Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), Now: time.Now}
		res, err := s.Run(context.Background())
		if err != nil {
			logger.Error("seeding failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("fixtures loaded",
			slog.Bool("skipped", res.Skipped),
			slog.Int("users", res.Users),
			slog.Int("restaurants", res.Restaurants),
			slog.Int("pictures", res.Pictures))
		return
	}

	sqlDB, driver, err := gw.SQL()
	if err != nil {
		logger.Error("database pool unavailable", slog.Any("error", err))
		os.Exit(1)
	}

	var publisher events.Publisher = events.Noop()
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		defer kp.Close()
		publisher = kp
		logger.Info("kafka events enabled", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("prefix", cfg.Kafka.TopicPrefix))
	}

	deps := &handlers.Deps{
		Store:    gw,
		Hasher:   hasher,
		Tokens:   auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Events:   publisher,
		Reporter: report.New(sqlDB, driver),
		Validate: handlers.NewValidator(),
		Log:      logger,
		Now:      time.Now,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", slog.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
