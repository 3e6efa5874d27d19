package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-audit-api/internal/config"
	"inventory-audit-api/internal/handler"
	"inventory-audit-api/internal/repository"
	"inventory-audit-api/internal/router"
	"inventory-audit-api/internal/service"
	"inventory-audit-api/internal/stream"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	log.Info().Str("env", cfg.App.Environment).Str("version", cfg.App.Version).Msg("starting inventory API")

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("db_type", cfg.InventoryDB.Type).Msg("failed to open inventory store")
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := repository.EnsureSchema(ctx, store); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}
	cancel()

	// Optional Redis mirror of the audit log
	var publisher service.Publisher
	var auditStream handler.Pinger
	if cfg.AuditStream.Enabled {
		s, err := stream.NewRedisAuditStream(stream.RedisStreamConfig{
			Addr:     cfg.AuditStream.RedisAddress(),
			Password: cfg.AuditStream.RedisPassword,
			DB:       cfg.AuditStream.RedisDB,
			Key:      cfg.AuditStream.Key,
			MaxLen:   cfg.AuditStream.MaxLen,
		})
		if err != nil {
			log.Warn().Err(err).Msg("audit stream disabled: redis connection failed")
		} else {
			defer s.Close()
			publisher = s
			auditStream = s
		}
	}

	inventoryRepo := repository.NewInventoryRepository(store)
	auditRepo := repository.NewAuditRepository(store)

	auditRecorder := service.NewAuditRecorder(auditRepo, publisher)
	inventoryService := service.NewInventoryService(inventoryRepo, auditRecorder)

	r := router.New(router.Config{
		Handler:          handler.New(store, auditStream, cfg.App.Version),
		InventoryHandler: handler.NewInventoryHandler(inventoryService),
		AuditHandler:     handler.NewAuditHandler(auditRecorder),
		AdminHandler:     handler.NewAdminHandler(inventoryService, auditStream, cfg.InventoryDB.Type),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Msgf("Server running on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	format := cfg.Log.Format
	if format == "" {
		format = "console"
		if cfg.App.IsProduction() {
			format = "json"
		}
	}
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func openStore(cfg *config.Config) (*repository.Store, error) {
	switch cfg.InventoryDB.Type {
	case "postgres", "postgresql":
		return repository.OpenPostgres(cfg.InventoryDB.PostgresDSN())
	case "mysql":
		return repository.OpenMySQL(cfg.Database.DSN())
	default:
		return repository.OpenSQLite(cfg.InventoryDB.Path)
	}
}
