package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	enginex "github.com/gtmquest/gtm-advisor/agent/engine"
	llmx "github.com/gtmquest/gtm-advisor/agent/llm"
	promptx "github.com/gtmquest/gtm-advisor/agent/prompt"
	toolx "github.com/gtmquest/gtm-advisor/agent/tool"
	catalogx "github.com/gtmquest/gtm-advisor/catalog"
	"github.com/gtmquest/gtm-advisor/pkg/config"
	_ "github.com/gtmquest/gtm-advisor/pkg/logger/autoload"
	serverx "github.com/gtmquest/gtm-advisor/server"
	voicex "github.com/gtmquest/gtm-advisor/voice"
)

type AppConfig struct {
	Addr            string        `envconfig:"ADDR" default:":8000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

func main() {
	appCfg := config.MustNew[AppConfig]("")
	llmCfg := config.MustNew[llmx.Config]("OPENROUTER")
	catalogCfg := config.MustNew[catalogx.Config]("")
	prompts := promptx.LoadPromptSet()

	// The catalog and the model credential degrade independently: tools
	// answer with failure acks instead of the process refusing to start.
	var cat contractx.Catalog
	if catalogCfg.Configured() {
		store, err := catalogx.NewStore(*catalogCfg)
		if err != nil {
			log.Error().Err(err).Msg("catalog store init failed; catalog tools degraded")
		} else {
			defer store.Close()
			cat = store
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set; catalog tools degraded")
	}

	var reasoning contractx.ReasoningBackend
	var voiceBackend contractx.TextBackend
	if llmCfg.Configured() {
		if b := llmx.NewBackend(llmCfg.OpenRouterFor(llmx.PathAdvisor)); b != nil {
			reasoning = b
		}
		if b := llmx.NewBackend(llmCfg.OpenRouterFor(llmx.PathVoice)); b != nil {
			voiceBackend = b
		}
	} else {
		log.Warn().Msg("OPENROUTER_API_KEY not set; advisor and voice paths degraded")
	}

	registry := toolx.NewRegistry(cat)
	eng, err := enginex.New(reasoning, registry, prompts.Advisor)
	if err != nil {
		log.Fatal().Err(err).Msg("engine init failed")
	}
	sessions := enginex.NewManager()
	voiceHandler := voicex.NewHandler(voiceBackend, prompts.Voice, llmCfg.OpenRouterFor(llmx.PathVoice).Model)

	srv := serverx.New(eng, sessions, voiceHandler)
	httpServer := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", appCfg.Addr).Msg("gtm advisor listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
