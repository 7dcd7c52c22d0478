package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/developia-II/marketplace-catalog/internal/adapters/repository"
	"github.com/developia-II/marketplace-catalog/internal/cache"
	"github.com/developia-II/marketplace-catalog/internal/config"
	"github.com/developia-II/marketplace-catalog/internal/database"
	"github.com/developia-II/marketplace-catalog/internal/events"
	"github.com/developia-II/marketplace-catalog/internal/handlers"
	"github.com/developia-II/marketplace-catalog/internal/middleware"
	"github.com/developia-II/marketplace-catalog/internal/services/catalog"
	"github.com/developia-II/marketplace-catalog/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using process environment")
	}

	cfg := config.Load()
	setupLogger(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	client, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to MongoDB")
	}
	var svc catalog.Service
	if client != nil {
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logrus.WithError(err).Warn("MongoDB disconnect failed")
			}
		}()
		db := client.Database(cfg.MongoDatabase)
		if cfg.EnsureIndexes {
			if err := repository.EnsureIndexes(ctx, db); err != nil {
				logrus.WithError(err).Warn("Could not ensure indexes")
			}
		}
		opts, closeFn := serviceOptions(cfg)
		defer closeFn()
		svc = newCatalog(db, opts...)
	}

	// Media
	var uploader handlers.ImageUploader
	if cfg.UploadsEnabled() {
		cld, err := utils.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			logrus.WithError(err).Error("Cloudinary setup failed, image uploads disabled")
		} else {
			uploader = cld
		}
	} else {
		logrus.Info("Cloudinary not configured, image uploads disabled")
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handlers.SetupRoutes(router, handlers.Dependencies{
		Service:        svc,
		Uploader:       uploader,
		ServiceName:    cfg.ServiceName,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		logrus.Infof("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logrus.Info("Shutting down...")

	// In-flight requests may run for RequestTimeout; let them finish before
	// the producer and store are closed by the deferred calls.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown did not complete")
	}
}

func newCatalog(db *mongo.Database, opts ...catalog.Option) catalog.Service {
	return catalog.NewService(
		repository.NewCategoryRepository(db),
		repository.NewProductRepository(db),
		opts...,
	)
}

// serviceOptions picks the cache and event backends from cfg. The returned
// func releases them and must run after the HTTP server has stopped.
func serviceOptions(cfg config.Config) ([]catalog.Option, func()) {
	var (
		opts    []catalog.Option
		closers []func()
	)

	if cfg.CacheEnabled() {
		rdb := cache.NewRedisClient(cfg.RedisAddr)
		opts = append(opts, catalog.WithCache(cache.NewRedis(rdb), cfg.CacheTTL))
		closers = append(closers, func() { _ = rdb.Close() })
		logrus.WithField("addr", cfg.RedisAddr).Info("Query cache: redis")
	} else {
		opts = append(opts, catalog.WithCache(cache.NewMemory(), cfg.CacheTTL))
		logrus.Info("Query cache: in-process")
	}

	if cfg.EventsEnabled() {
		prod := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024)
		prod.Start()
		opts = append(opts, catalog.WithEvents(prod))
		closers = append(closers, prod.Close)
		logrus.WithField("topic", cfg.KafkaTopic).Info("Catalog events: kafka")
	}

	return opts, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func setupLogger(level, format string) {
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
