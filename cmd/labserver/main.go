package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	genaiadapter "github.com/mwhitfield/labserver/internal/adapter/driven/genai"
	sqliteadapter "github.com/mwhitfield/labserver/internal/adapter/driven/sqlite"
	httphandler "github.com/mwhitfield/labserver/internal/adapter/driving/http"
	"github.com/mwhitfield/labserver/internal/config"
	"github.com/mwhitfield/labserver/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration; the API key is resolved once here and is
	// immutable for the rest of the run.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"static_dir", cfg.StaticDir,
		"token_uses", cfg.TokenUses,
		"vision_model", cfg.VisionModel,
	)

	if cfg.HasAPIKey() {
		// Log a fingerprint so the operator can tell which key is live
		// without the key itself ever reaching the console.
		sum := sha256.Sum256([]byte(cfg.APIKey))
		slog.Info("api key resolved", "length", len(cfg.APIKey), "fingerprint", hex.EncodeToString(sum[:4]))
	} else {
		slog.Warn("no API key resolved; token and vision routes are disabled")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Ensure the schema exists; the admin CLI runs the same migrations,
	// so either process can start first.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters. The upstream client stays nil without a key; the
	// router degrades those routes to a configuration error.
	loginStore := sqliteadapter.NewLoginRepo(db)

	var client *genaiadapter.Client
	if cfg.HasAPIKey() {
		client = genaiadapter.NewClient(cfg.APIKey, cfg.VisionModel)
	}

	handler := httphandler.NewHandler(loginStore, nilIfUnset(client), cfg.TokenUses, cfg.StaticDir, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("labserver started",
		"listen_addr", cfg.ListenAddr,
		"configured", cfg.HasAPIKey(),
	)

	// 6. Wait for shutdown signal, then drain with a 10s timeout.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// nilIfUnset keeps a nil *Client from becoming a non-nil interface value,
// which would defeat the router's configuration check.
func nilIfUnset(c *genaiadapter.Client) driven.GenAIClient {
	if c == nil {
		return nil
	}
	return c
}
