package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/souqly/storefront/internal/config"
	"github.com/souqly/storefront/internal/es"
	"github.com/souqly/storefront/internal/handlers"
	"github.com/souqly/storefront/internal/logging"
	"github.com/souqly/storefront/internal/metrics"
	"github.com/souqly/storefront/internal/mykafka"
	"github.com/souqly/storefront/internal/service"
	"github.com/souqly/storefront/internal/service/search"
	httpserver "github.com/souqly/storefront/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.RefreshSecret, "REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	var producer *mykafka.Producer
	if cfg.KafkaAddress != "" {
		producer, err = mykafka.NewProducer([]string{cfg.KafkaAddress})
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, domain events disabled")
	}

	searchHandler := &handlers.SearchHandler{Index: cfg.ES_INDEX}
	var indexer *search.Indexer
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		searchHandler.ES = esClient
		indexer = &search.Indexer{ES: esClient, Index: cfg.ES_INDEX}
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	jwtSecret := []byte(cfg.JWTSecret)
	refreshSecret := []byte(cfg.RefreshSecret)

	tokens := &service.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}
	users := &service.UserService{DB: db}
	catalog := &service.CatalogService{DB: db}
	orders := &service.OrderService{DB: db}
	notifications := &service.NotificationService{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(metrics.Middleware())

	deps := httpserver.Deps{
		AuthHandler:         &handlers.AuthHandler{Users: users, Tokens: tokens, Producer: producer},
		ProductHandler:      &handlers.ProductHandler{Svc: catalog, Users: users, Producer: producer, Indexer: indexer},
		CategoryHandler:     &handlers.CategoryHandler{DB: db},
		OrderHandler:        &handlers.OrderHandler{Svc: orders, Producer: producer},
		NotificationHandler: &handlers.NotificationHandler{Svc: notifications},
		UploadHandler:       &handlers.UploadHandler{Dir: cfg.UploadDir},
		SearchHandler:       searchHandler,
		TokenService:        tokens,
		UploadDir:           cfg.UploadDir,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
