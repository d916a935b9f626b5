package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/nocodeinfolab/ledgersync/internal/config"
	"github.com/nocodeinfolab/ledgersync/internal/database"
	"github.com/nocodeinfolab/ledgersync/internal/history"
	historyStore "github.com/nocodeinfolab/ledgersync/internal/history/store"
	ledgersyncHttp "github.com/nocodeinfolab/ledgersync/internal/http"
	historyHandler "github.com/nocodeinfolab/ledgersync/internal/http/history"
	webhookHandler "github.com/nocodeinfolab/ledgersync/internal/http/webhook"
	"github.com/nocodeinfolab/ledgersync/internal/ledger"
	"github.com/nocodeinfolab/ledgersync/internal/reconcile"
)

func main() {
	// .env is for local development only; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	gateway := ledger.NewGateway(ledger.GatewayConfig{
		AuthURL:      cfg.Ledger.AuthURL,
		ClientID:     cfg.Ledger.ClientID,
		ClientSecret: cfg.Ledger.ClientSecret,
		RefreshToken: cfg.Ledger.RefreshToken,
		AccessToken:  cfg.Ledger.AccessToken,
		Timeout:      cfg.Ledger.CallTimeout,
	})

	client := ledger.NewClient(cfg.Ledger.BaseURL, cfg.Ledger.OrganizationID, gateway)

	historyRepo := history.Disabled()

	if cfg.HistoryEnabled() {
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to history database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		historyRepo = historyStore.New(db)
	} else {
		slog.Warn("no history database configured, reconciliation history disabled")
	}

	var (
		reconcileService = reconcile.NewService(client)
		historyService   = history.NewService(historyRepo)
	)

	var (
		webhookH = webhookHandler.NewHandler(reconcileService, historyService)
		historyH = historyHandler.NewHandler(historyService)
	)

	router := ledgersyncHttp.New(webhookH, historyH, cfg.Webhook.Secret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
