package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/auth"
	"github.com/masiqhakaze/website/internal/config"
	"github.com/masiqhakaze/website/internal/posts"
	"github.com/masiqhakaze/website/internal/site"
	"github.com/masiqhakaze/website/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	ctx := context.Background()

	// ── Document store ───────────────────────────────────────
	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()
	log.Info("document store ready", zap.String("driver", cfg.StoreDriver))

	// ── Sessions ─────────────────────────────────────────────
	var sessionStore auth.SessionStore = auth.NewMemorySessionStore()
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessionStore = auth.NewRedisSessionStore(rdb)
	} else {
		log.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}
	if cfg.SessionSecret == "" {
		log.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	sessions, err := auth.NewSessions(sessionStore, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	// ── Static assets ────────────────────────────────────────
	static := site.DirHandler(cfg.StaticDir)
	if cfg.MinioEndpoint != "" {
		assets, err := openMinio(ctx, cfg)
		if err != nil {
			return err
		}
		static = site.AssetHandler(assets, log)
		log.Info("serving static assets from minio", zap.String("bucket", cfg.MinioBucket))
	}

	// ── Handlers ─────────────────────────────────────────────
	tmpl, err := site.LoadTemplates(cfg.TemplateDir)
	if err != nil {
		return err
	}
	creds := auth.NewCredentialStore(backend)
	pages := site.NewHandler(posts.NewStore(backend), tmpl, cfg.OrganizationName, site.DefaultMembers, log)

	handler := site.NewRouter(site.Routes{
		Pages:       pages,
		Auth:        auth.NewHandler(creds, sessions, log),
		Sessions:    sessions,
		Static:      static,
		CorsOrigins: cfg.CorsAllowedOrigins,
		Log:         log,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
