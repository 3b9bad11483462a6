package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/PabloGalante/taborra-agent/internal/adapters/http"
	"github.com/PabloGalante/taborra-agent/internal/adapters/whatsapp"
	"github.com/PabloGalante/taborra-agent/internal/bootstrap"
	"github.com/PabloGalante/taborra-agent/internal/config"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

func main() {
	log := observability.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}
	observability.SetLevel(cfg.LogLevel)

	delivery := whatsapp.NewClient(
		cfg.WhatsAppPhoneID,
		cfg.WhatsAppAccessToken,
		whatsapp.WithAPIVersion(cfg.WhatsAppAPIVersion),
	)
	if !delivery.Enabled() {
		log.Warn("whatsapp credentials missing, outbound messages will be dropped")
	}

	app, err := bootstrap.Build(context.Background(), cfg, delivery)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("shutdown close error", "error", err)
		}
	}()

	handler := httpadapter.NewServer(app.Conversation, app.Ratings, httpadapter.Options{
		VerifyToken:   cfg.WhatsAppVerifyToken,
		AppSecret:     cfg.WhatsAppAppSecret,
		CallbackToken: cfg.AutomationCallbackToken,
		Gatherer:      app.Registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Taborra API listening", "port", cfg.Port, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server crashed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown error", "error", err)
	}
}
