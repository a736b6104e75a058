package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/api/handlers"
	"github.com/linskybing/grant-review/internal/api/middleware"
	"github.com/linskybing/grant-review/internal/api/routes"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/config"
	"github.com/linskybing/grant-review/internal/config/db"
	"github.com/linskybing/grant-review/internal/cron"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/internal/notify"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/internal/storage"
	"github.com/linskybing/grant-review/pkg/logger"
)

func main() {
	// Load configuration from environment variables and .env file
	config.LoadConfig()

	log, err := logger.New(config.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	policy, err := config.LoadPolicy(config.WorkflowPolicyFile)
	if err != nil {
		log.Fatal("failed to load workflow policy", "file", config.WorkflowPolicyFile, "error", err)
	}
	policy.ApplyTunables()
	phases, err := policy.ApplyPhases(call.DefaultPhases)
	if err != nil {
		log.Fatal("invalid workflow policy", "error", err)
	}
	machine, err := call.NewMachine(phases)
	if err != nil {
		log.Fatal("invalid lifecycle", "error", err)
	}

	// Initialize JWT signing key
	middleware.Init()

	// Initialize database connection and migrate schemas
	db.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()
	var publisher events.Publisher = hub
	if config.RedisAddr != "" {
		bus, err := events.NewRedisBus(events.RedisOptions{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
			Channel:  config.EventsChannel,
		}, log)
		if err != nil {
			log.Fatal("failed to connect to redis", "addr", config.RedisAddr, "error", err)
		}
		defer bus.Close()
		if err := bus.StartForwarder(ctx, hub.Deliver); err != nil {
			log.Fatal("failed to subscribe to events channel", "error", err)
		}
		publisher = bus
	}

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if config.SMTPHost != "" {
		smtp, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     config.SMTPHost,
			Port:     config.SMTPPort,
			User:     config.SMTPUser,
			Password: config.SMTPPassword,
			From:     config.SMTPFrom,
		})
		if err != nil {
			log.Fatal("invalid smtp configuration", "error", err)
		}
		notifier = smtp
	}

	opts := application.Options{
		Machine: machine,
		Settings: &application.Settings{
			DispersionThreshold: config.DispersionThreshold,
			AreaPrefixLength:    config.AreaPrefixLength,
			ScoreScale:          config.ScoreScale,
			PresignTTL:          config.PresignTTL,
		},
		Notifier: notifier,
		Events:   publisher,
		Log:      log,
	}
	if config.MinioEndpoint != "" {
		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  config.MinioEndpoint,
			AccessKey: config.MinioAccessKey,
			SecretKey: config.MinioSecretKey,
			Bucket:    config.MinioBucket,
			UseSSL:    config.MinioUseSSL,
		})
		if err != nil {
			log.Fatal("failed to initialize object storage", "endpoint", config.MinioEndpoint, "error", err)
		}
		opts.Store = store
	} else {
		log.Warn("MINIO_ENDPOINT not set, attachments are disabled")
	}

	svc := application.New(repository.NewRepositories(db.DB), opts)
	cron.StartAutoClose(ctx, svc.Lifecycle, config.AutoCloseInterval, log)

	if config.Mode == "production" || config.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	origins := middleware.ParseOrigins(config.CORSAllowedOrigins)
	router.Use(middleware.CORSMiddleware(origins))
	router.Use(middleware.LoggingMiddleware(log))

	routes.RegisterRoutes(router, handlers.New(svc, hub, origins, log))

	srv := &http.Server{
		Addr:              ":" + config.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
