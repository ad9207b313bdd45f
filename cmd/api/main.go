package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sokofresh/soko-api/internal/auth"
	"github.com/sokofresh/soko-api/internal/cart"
	"github.com/sokofresh/soko-api/internal/catalog"
	"github.com/sokofresh/soko-api/internal/chat"
	"github.com/sokofresh/soko-api/internal/checkout"
	"github.com/sokofresh/soko-api/internal/config"
	"github.com/sokofresh/soko-api/internal/httpx"
	kafkax "github.com/sokofresh/soko-api/internal/kafka"
	"github.com/sokofresh/soko-api/internal/logx"
	"github.com/sokofresh/soko-api/internal/orders"
	"github.com/sokofresh/soko-api/internal/payment"
	"github.com/sokofresh/soko-api/internal/postgres"
	"github.com/sokofresh/soko-api/internal/redisx"
	"github.com/sokofresh/soko-api/internal/stations"
	"github.com/sokofresh/soko-api/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New(logx.Options{Service: cfg.ServiceName, Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	prod.Start(ctx)

	// Stores & repos
	issuer := &auth.TokenIssuer{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	sessions := &auth.SessionStore{Redis: rdb}
	carts := &cart.Store{Redis: rdb}
	catalogRepo := &catalog.Repo{DB: db}
	stationRepo := &stations.Repo{DB: db}
	userRepo := &users.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}

	ctl := &checkout.Controller{
		Carts:       carts,
		Sessions:    &checkout.SessionStore{Redis: rdb},
		Catalog:     catalogRepo,
		Gateway:     payment.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecret),
		Orders:      orderRepo,
		Producer:    prod,
		ServiceName: cfg.ServiceName,
	}

	// Router & handlers
	guard := &httpx.Guard{Issuer: issuer}
	router := httpx.NewRouter()

	(&httpx.AuthHandler{Users: userRepo, Issuer: issuer, Sessions: sessions}).Register(router, guard)
	(&httpx.CartHandler{Carts: carts, Catalog: catalogRepo}).Register(router, guard)
	(&httpx.CheckoutHandler{Ctl: ctl, Stations: stationRepo}).Register(router, guard)
	(&httpx.CatalogHandler{Repo: catalogRepo}).Register(router, guard)
	(&httpx.StationsHandler{Repo: stationRepo}).Register(router, guard)
	(&httpx.OrdersHandler{Repo: orderRepo, Redis: rdb}).Register(router, guard)
	(&httpx.UsersHandler{Repo: userRepo}).Register(router, guard)
	(&httpx.ChatHandler{Client: chat.NewClient(cfg.ChatBaseURL, cfg.ChatAPIKey)}).Register(router, guard)
	(&httpx.DashboardHandler{}).Register(router, guard)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
