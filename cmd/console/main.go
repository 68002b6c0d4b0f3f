package main

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/frontdesk-console/internal/application"
	"github.com/example/frontdesk-console/internal/config"
	httptransport "github.com/example/frontdesk-console/internal/http"
	"github.com/example/frontdesk-console/internal/persistence/sqlite"
	"github.com/example/frontdesk-console/internal/tapechart"
	"github.com/example/frontdesk-console/internal/ws"
)

func main() {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := sessionTokenGenerator(cfg.SessionSecret)
	now := time.Now

	backend := sqlite.NewBackend(storage, idGenerator, now)

	hub := ws.NewHub(logger)
	go hub.Run(ctx)
	broadcaster := ws.NewBroadcaster(hub, logger)

	chartService := application.NewChartServiceWithLogger(backend, now, logger)
	operationService := application.NewOperationServiceWithLogger(
		chartService, backend, broadcaster, idGenerator, now, cfg.UndoDepth, cfg.CommitTimeout, logger)
	authService := application.NewAuthServiceWithLogger(
		backend, backend, application.VerifyPassword, tokenGenerator, now, cfg.SessionTTL, logger)
	roomStatusService := application.NewRoomStatusServiceWithLogger(backend, chartService, now, logger)

	start := tapechart.DateOnly(now())
	if err := chartService.LoadChart(ctx, cfg.ViewID, start, start.AddDate(0, 0, cfg.ChartDays)); err != nil {
		// The chart handler retries lazily, so a cold store only delays startup.
		logger.Warn("initial chart load failed", "error", err)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		if err := authService.PruneSessions(context.Background()); err != nil {
			logger.Error("session prune failed", "error", err)
		}
	}); err != nil {
		logger.Error("failed to schedule session prune", "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc("@every 5m", func() {
		day := tapechart.DateOnly(now())
		if err := chartService.LoadChart(context.Background(), cfg.ViewID, day, day.AddDate(0, 0, cfg.ChartDays)); err != nil {
			logger.Error("chart refresh failed", "error", err)
		}
	}); err != nil {
		logger.Error("failed to schedule chart refresh", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(authService, logger),
		Chart:      httptransport.NewChartHandler(chartService, cfg.ViewID, cfg.ChartDays, now, logger),
		Operations: httptransport.NewOperationHandler(operationService, logger),
		Rooms:      httptransport.NewRoomHandler(roomStatusService, logger),
		WebSocket:  ws.Handler(hub, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if openRoute(r) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("front-desk console listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// openRoute reports whether the request may bypass session authentication.
// Only login is open; every other route, the websocket included, carries a
// session token.
func openRoute(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == "/sessions"
}

// sessionTokenGenerator derives opaque session tokens from random bytes keyed
// with the deploy secret, so tokens from one deployment are worthless against
// another.
func sessionTokenGenerator(secret string) func() string {
	return func() string {
		buf := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(buf)
		return hex.EncodeToString(mac.Sum(nil))
	}
}
