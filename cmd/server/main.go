package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/boston-kebab/kiosk/internal/assistant"
	"github.com/boston-kebab/kiosk/internal/config"
	"github.com/boston-kebab/kiosk/internal/logging"
	"github.com/boston-kebab/kiosk/internal/menu"
	"github.com/boston-kebab/kiosk/internal/router"
	"github.com/boston-kebab/kiosk/internal/session"
	"github.com/boston-kebab/kiosk/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.LogLevel)

	catalog, err := menu.LoadDefault()
	if err != nil {
		log.Fatal().Err(err).Msg("load menu catalog")
	}
	log.Info().Int("items", len(catalog.Items())).Msg("catalog loaded")

	sessions := session.NewManager(catalog)

	deps := router.Deps{
		Sessions: sessions,
		Hub:      ws.NewHub(),
		Log:      log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, assistant endpoints disabled")
	} else {
		model, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel(cfg.GeminiModel),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("init model client")
		}
		asst := assistant.New(model, log)
		deps.Asker = asst
		deps.Resetter = asst

		if cfg.VoiceEnabled {
			deps.VoiceDial = ws.NewGeminiDialer(cfg.GeminiAPIKey, cfg.GeminiModel, catalog, log)
			log.Info().Msg("voice channel enabled")
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}
}
