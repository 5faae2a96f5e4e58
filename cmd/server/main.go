package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/happyscroll/verdict-service/internal/cache"
	"github.com/happyscroll/verdict-service/internal/config"
	"github.com/happyscroll/verdict-service/internal/httpapi"
	"github.com/happyscroll/verdict-service/internal/logging"
	"github.com/happyscroll/verdict-service/internal/orchestrator"
	"github.com/happyscroll/verdict-service/internal/ratelimit"
	"github.com/happyscroll/verdict-service/internal/transcript"
	"github.com/happyscroll/verdict-service/internal/visionsafety"
	"github.com/happyscroll/verdict-service/internal/youtubemeta"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.Init(cfg.LogLevel)
	ctx := context.Background()

	meta, err := youtubemeta.New(ctx, cfg.YouTubeAPIKey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct youtube metadata client")
	}

	vision, err := visionsafety.New(ctx, cfg.VisionAPIKey, cfg.ImageSafetyThreshold, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct vision safety analyzer")
	}

	gemini, err := transcript.New(ctx, cfg.GeminiAPIKey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct transcript classifier")
	}

	var backend cache.Backend = cache.NewMemoryBackend()
	if cfg.CacheBackendURL != "" {
		redisBackend := cache.NewRedisBackend(cfg.CacheBackendURL, log)
		if err := redisBackend.Ping(ctx); err == nil {
			backend = redisBackend
		} else {
			log.Warn().Msg("cache: redis unreachable at startup, using in-process cache")
		}
	}
	verdictCache := cache.New(backend, cfg.CacheTTL(), log)

	httpapi.InitMetrics(verdictCache)

	gate := ratelimit.NewGate(cfg.GlobalDailyLimit, cfg.PerClientDailyLimit, cfg.Location())

	orch := orchestrator.New(
		verdictCache,
		gate,
		meta,
		httpapi.InstrumentedThumbnail{ThumbnailClassifier: vision},
		httpapi.InstrumentedTranscript{TranscriptClassifier: gemini},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      "HappyScroll Verdict Service",
		ServerHeader: "happyscroll-verdict",
	})

	handlers := &httpapi.Handlers{
		Verdict: httpapi.NewVerdictHandler(orch, log),
		Cache:   httpapi.NewCacheHandler(verdictCache),
		Health:  httpapi.NewHealthHandler(verdictCache),
	}
	httpapi.Setup(app, handlers, cfg.CORSOrigins, log)

	go func() {
		addr := ":" + strconv.Itoa(cfg.Port)
		log.Info().Str("addr", addr).Msg("verdict service starting")
		if err := app.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
