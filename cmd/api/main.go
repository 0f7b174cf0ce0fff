package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/andrasetia/go-sheet-storefront/internal/cart"
	"github.com/andrasetia/go-sheet-storefront/internal/catalog"
	"github.com/andrasetia/go-sheet-storefront/internal/checkout"
	"github.com/andrasetia/go-sheet-storefront/internal/config"
	"github.com/andrasetia/go-sheet-storefront/internal/httpx"
	kafkax "github.com/andrasetia/go-sheet-storefront/internal/kafka"
	"github.com/andrasetia/go-sheet-storefront/internal/logx"
	"github.com/andrasetia/go-sheet-storefront/internal/orders"
	"github.com/andrasetia/go-sheet-storefront/internal/postgres"
	"github.com/andrasetia/go-sheet-storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logx.Init(cfg.ServiceName, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB + schema
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		slog.Error("migrate", "err", err)
		os.Exit(1)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConn)
	if err != nil {
		slog.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.Cache{R: rdb}

	// Kafka producers
	pSub := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSubmitted, 1024)
	pSub.Start(ctx)
	pFail := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderFailed, 1024)
	pFail.Start(ctx)
	pStat := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 256)
	pStat.Start(ctx)

	// Gateways
	catalogGW := &catalog.Cache{
		Gateway: catalog.NewClient(cfg.CatalogBaseURL),
		Store:   cache,
	}
	checkoutGW := checkout.NewClient(cfg.CheckoutBaseURL)

	// Handlers
	router := httpx.NewRouter()
	ch := &httpx.CartHandler{
		Store:     cart.NewStore(),
		Catalog:   catalogGW,
		Checkout:  checkoutGW,
		Orders:    &orders.Repo{DB: db},
		Cache:     cache,
		Submitted: pSub,
		Failed:    pFail,
		Service:   cfg.ServiceName,
	}
	ch.Register(router)
	oh := &httpx.OrdersHandler{
		Repo:    &orders.Repo{DB: db},
		Sales:   &orders.SalesRepo{DB: db},
		Cache:   cache,
		Status:  pStat,
		Service: cfg.ServiceName,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pSub.Close() // close inbox -> flush & close writer
	pFail.Close()
	pStat.Close()
	pSub.WaitClosed()
	pFail.WaitClosed()
	pStat.WaitClosed()
}
