package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	pkgdb "github.com/Skotchmaster/dealer_market/pkg/db"
	"github.com/Skotchmaster/dealer_market/pkg/es"
	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/dealer_market/pkg/middleware/logging"
	"github.com/Skotchmaster/dealer_market/pkg/mykafka"

	ordercfg "github.com/Skotchmaster/dealer_market/services/order/internal/config"
	"github.com/Skotchmaster/dealer_market/services/order/internal/httpserver"
	"github.com/Skotchmaster/dealer_market/services/order/internal/realtime"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
	"github.com/Skotchmaster/dealer_market/services/order/internal/search"
	"github.com/Skotchmaster/dealer_market/services/order/internal/service"
)

func main() {
	cfg := ordercfg.Load(os.Getenv("ENV_FILE"))

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	rootCtx, stopRoot := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer stopRoot()

	initCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}

	rp := &repo.GormRepo{DB: db}
	if err := rp.Migrate(initCtx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	hub := realtime.NewHub()
	var pusher service.Pusher = hub
	var relay *realtime.RedisRelay
	if cfg.RedisURL != "" {
		relay, err = realtime.NewRedisRelay(initCtx, cfg.RedisURL, realtime.DefaultChannel, hub)
		if err != nil {
			logger.Warn("redis_relay_disabled", "error", err)
		} else {
			pusher = relay
			go func() {
				if err := relay.Run(rootCtx); err != nil {
					logger.Error("redis_relay_stopped", "error", err)
				}
			}()
		}
	}

	var events service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Warn("kafka_disabled", "error", err)
		} else {
			events = producer
		}
	}

	index := orderIndex(cfg, logger)
	cancel()

	notifier := &service.NotificationService{
		Repo:       rp,
		Pusher:     pusher,
		Events:     events,
		EventTopic: cfg.KafkaNotificationTopic,
	}
	orderSvc := &service.OrderService{
		Repo:       rp,
		Notifier:   notifier,
		Events:     events,
		EventTopic: cfg.KafkaOrderTopic,
		Index:      index,
	}
	matching := &service.MatchingService{Repo: rp, Matchers: service.DefaultMatchers()}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins, AllowCredentials: true}))
	} else {
		e.Use(echomw.CORS())
	}
	e.Use(csrf.Middleware(csrf.Config{
		Secure:    cfg.CookieSecure,
		SkipPaths: []string{"/health/live", "/health/ready", "/dealers/register"},
	}))

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler:        &httpserver.OrderHTTP{Svc: orderSvc, Matching: matching},
		NotificationHandler: &httpserver.NotificationHTTP{Svc: notifier, Hub: hub, AllowedOrigins: cfg.CORSOrigins},
		DealerHandler:       &httpserver.DealerHTTP{Svc: &service.AccountService{Repo: rp, Notifier: notifier}},
		CatalogHandler:      &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: rp, Notifier: notifier}},
		AddressHandler:      &httpserver.AddressHTTP{Svc: &service.AddressService{Repo: rp}},
		JWTSecret:           cfg.JWTAccessSecret,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("order service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	stopRoot()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close_failed", "error", err)
		}
	}
	if relay != nil {
		_ = relay.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("order service stopped")
}

// orderIndex connects the optional Elasticsearch order index. A nil result
// leaves search on the database fallback.
func orderIndex(cfg ordercfg.ServiceConfig, logger *slog.Logger) service.OrderIndexer {
	if cfg.ESURL == "" {
		return nil
	}
	client, err := es.NewClient(es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
	if err != nil {
		logger.Warn("search_index_disabled", "error", err)
		return nil
	}
	idx, err := search.NewOrderIndex(client, cfg.ESOrderIndex)
	if err != nil {
		logger.Warn("search_index_disabled", "error", err)
		return nil
	}
	return idx
}
