package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/lovejourney/internal/auth"
	"github.com/dukerupert/lovejourney/internal/config"
	"github.com/dukerupert/lovejourney/internal/database"
	"github.com/dukerupert/lovejourney/internal/logging"
	"github.com/dukerupert/lovejourney/internal/media"
	"github.com/dukerupert/lovejourney/internal/memstore"
	"github.com/dukerupert/lovejourney/internal/prompt"
	"github.com/dukerupert/lovejourney/internal/server"
	"github.com/dukerupert/lovejourney/internal/store"
)

func main() {
	loaded := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if len(loaded) > 0 {
		slog.Info("loaded env files", "files", loaded)
	}

	ctx := context.Background()

	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closeStores.Close()

	if cfg.RedisAddr != "" {
		rdb, err := auth.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		stores.Sessions = auth.NewRedisSessionStore(rdb, cfg.SessionTTL)
		slog.Info("sessions stored in redis", "addr", cfg.RedisAddr)
	}

	prompts, err := prompt.Load(cfg.PromptsFile)
	if err != nil {
		slog.Error("failed to load prompts", "path", cfg.PromptsFile, "error", err)
		os.Exit(1)
	}

	srvCfg := server.Config{
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
		Prompts:      prompt.NewPicker(prompts, nil),
	}
	if cfg.Minio.Enabled() {
		uploader, err := media.NewMinioStore(ctx, media.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
			PublicURL: cfg.Minio.PublicURL,
		})
		if err != nil {
			slog.Error("failed to connect to object storage", "endpoint", cfg.Minio.Endpoint, "error", err)
			os.Exit(1)
		}
		srvCfg.Uploader = uploader
	}

	srv := server.New(stores, srvCfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(cleanupCtx); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("lovejourney starting", "addr", httpServer.Addr, "store", cfg.Store)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStores(ctx context.Context, cfg *config.Config) (server.Stores, io.Closer, error) {
	if cfg.Store == config.StoreMemory {
		db := memstore.New()
		db.Sessions.SetTTL(cfg.SessionTTL)
		return server.Stores{
			Users:         db.Users,
			Sessions:      db.Sessions,
			Relationships: db.Relationships,
			Questions:     db.Questions,
			Memories:      db.Memories,
		}, nopCloser{}, nil
	}

	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return server.Stores{}, nil, err
	}
	return server.Stores{
		Users:         store.NewUserStore(db),
		Sessions:      store.NewSessionStore(db, cfg.SessionTTL),
		Relationships: store.NewRelationshipStore(db),
		Questions:     store.NewQuestionStore(db),
		Memories:      store.NewMemoryStore(db),
	}, db, nil
}
