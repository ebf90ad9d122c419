package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/freetalk/signaling/internal/adapters/http"
	"github.com/freetalk/signaling/internal/app"
	"github.com/freetalk/signaling/internal/app/orch"
	"github.com/freetalk/signaling/internal/config"
	"github.com/freetalk/signaling/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	categories := make([]domain.RoomID, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories = append(categories, domain.RoomID(c))
	}

	registry := app.NewRegistry()
	presence := app.NewTracker(categories)
	limiter := app.NewCallRateLimiter(cfg.CallLimit, cfg.CallWindow)
	invites := app.NewInviteManager(registry, limiter, cfg.CallTimeout)
	relay := app.NewRelay(registry)

	o := orch.New(registry, presence, invites, relay)

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("FreeTalk signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
