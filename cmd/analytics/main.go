package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/andrasetia/go-sheet-storefront/internal/analytics"
	"github.com/andrasetia/go-sheet-storefront/internal/config"
	kafkax "github.com/andrasetia/go-sheet-storefront/internal/kafka"
	"github.com/andrasetia/go-sheet-storefront/internal/logx"
	"github.com/andrasetia/go-sheet-storefront/internal/orders"
	"github.com/andrasetia/go-sheet-storefront/internal/postgres"
	"github.com/andrasetia/go-sheet-storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logx.Init(cfg.ServiceName+"-analytics", cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConn)
	if err != nil {
		slog.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &analytics.Service{
		Sales:       &orders.SalesRepo{DB: db},
		Dedup:       redisx.Cache{R: rdb},
		ServiceName: cfg.ServiceName + "-analytics",
	}

	group := getenv("ANALYTICS_GROUP", "storefront-analytics")
	workers := mustAtoi(os.Getenv("ANALYTICS_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderSubmitted, workers)

	go func() {
		slog.Info("analytics consumer started", "group", group, "topic", orders.TopicOrderSubmitted, "workers", workers)
		if err := cons.Start(ctx, svc.HandleOrderSubmitted); err != nil {
			slog.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down consumer")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
