package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/oklog/run"

	"github.com/tradedesk/tradedesk/internal/account"
	"github.com/tradedesk/tradedesk/internal/api"
	"github.com/tradedesk/tradedesk/internal/auth"
	"github.com/tradedesk/tradedesk/internal/book"
	"github.com/tradedesk/tradedesk/internal/config"
	"github.com/tradedesk/tradedesk/internal/feed"
	"github.com/tradedesk/tradedesk/internal/storage"
	"github.com/tradedesk/tradedesk/internal/trading"
)

// Main entry point: wires storage, stores, price feed, and HTTP server.
func main() {
	cfg := config.Load()

	// Open the on-device store
	store, err := storage.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open storage", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	// Stores and services
	accounts := account.NewStore(store)
	orders := trading.NewStore(store, accounts)
	books := book.NewDefaultRegistry()
	authService := auth.NewService(cfg.JWTSecret)

	// Price feed
	bus := feed.NewBus()
	client := feed.NewClient(cfg.FeedURL, bus)

	// HTTP surface
	handler := api.NewHandler(accounts, orders, books, authService, bus)

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Mount("/", api.NewRouter(handler))

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	g.Add(func() error {
		slog.Info("starting server", "addr", cfg.ListenAddr)
		return server.ListenAndServe()
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	})
	g.Add(func() error {
		return client.Run(ctx)
	}, func(error) {
		cancel()
	})
	g.Add(func() error {
		return handler.RunCharts(ctx)
	}, func(error) {
		cancel()
	})

	err = g.Run()
	var signalErr run.SignalError
	switch {
	case errors.As(err, &signalErr):
		slog.Info("shutting down", "signal", signalErr.Signal)
	case err != nil && !errors.Is(err, context.Canceled):
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
