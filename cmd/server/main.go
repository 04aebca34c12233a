// Package main provides the AskSFU chat server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/manmad-web/sfubot/internal/chat"
	"github.com/manmad-web/sfubot/internal/config"
	"github.com/manmad-web/sfubot/internal/course"
	"github.com/manmad-web/sfubot/internal/genai"
	"github.com/manmad-web/sfubot/internal/history"
	"github.com/manmad-web/sfubot/internal/logger"
	"github.com/manmad-web/sfubot/internal/metrics"
	"github.com/manmad-web/sfubot/internal/rag"
	"github.com/manmad-web/sfubot/internal/ratelimit"
	"github.com/manmad-web/sfubot/internal/rooms"
	"github.com/manmad-web/sfubot/internal/scraper"
	"github.com/manmad-web/sfubot/internal/sfuapi"
	"github.com/manmad-web/sfubot/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log.Info("Starting AskSFU server")

	// Initialize Sentry error reporting (optional)
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.WithError(err).Warn("Failed to initialize Sentry, error reporting disabled")
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
			log.Info("Sentry error reporting enabled")
		}
	}

	// Create Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create fetch client for SFU pages and the course outlines API
	fetcher := scraper.NewClient(cfg.FetchTimeout, cfg.FetchMaxRetries)
	fetcher.SetMetrics(m)
	courseClient := sfuapi.New(cfg.CourseAPIBaseURL, fetcher)
	log.Info("Fetch clients created")

	// Create LLM completers (each optional, fallback chain handles gaps)
	var gemini, groq genai.Completer
	if cfg.GeminiAPIKey != "" {
		gemini, err = genai.NewGeminiCompleter(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.WithError(err).Warn("Failed to create Gemini completer")
		}
	}
	if cfg.GroqAPIKey != "" {
		groq, err = genai.NewGroqCompleter(cfg.GroqAPIKey, cfg.GroqModel)
		if err != nil {
			log.WithError(err).Warn("Failed to create Groq completer")
		}
	}

	fallback := genai.NewFallbackCompleter(gemini, groq, genai.DefaultRetryConfig(), log, m)
	defer func() { _ = fallback.Close() }()

	// Throttle all completions with a shared token bucket
	completer := genai.NewThrottledCompleter(fallback, ratelimit.New(cfg.LLMBurstTokens, cfg.LLMRefillPerSec))
	if fallback.IsEnabled() {
		log.WithField("provider", string(fallback.Provider())).Info("LLM completer ready")
	} else {
		log.Warn("No LLM provider configured, generated answers disabled")
	}

	// Create the document index. Corpus loading and embedding run in the
	// background so startup stays fast; /ready reports 503 until done.
	index, err := rag.NewIndex(genai.NewEmbeddingFunc(cfg.GeminiAPIKey, cfg.EmbeddingModel), log, m)
	if err != nil {
		log.WithError(err).Error("Failed to create document index")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.GeminiAPIKey != "" {
		go buildIndex(ctx, index, fetcher, cfg, log)
	} else {
		log.Warn("Gemini API key not configured, document retrieval disabled")
	}

	// Assemble the chat pipeline
	hist := history.NewStore(cfg.HistoryLimit)
	pending := course.NewPendingStore()
	realtime := chat.NewRealtime(cfg.OpenWeatherAPIKey, cfg.NewsAPIKey, cfg.FetchTimeout, log)
	answerer := rag.NewAnswerer(index, completer, hist, cfg.RelevanceThreshold, cfg.RetrievalTopK, cfg.AnswerMaxChars, log, m)
	pipeline := chat.New(hist, pending, courseClient, realtime, answerer, completer, log, m)
	log.Info("Chat pipeline assembled")

	// Group chat rooms; the room bot needs a working completer
	var botCompleter genai.Completer
	if fallback.IsEnabled() {
		botCompleter = completer
	}
	engine := rooms.NewEngine(botCompleter, cfg.BotReplyDelay, log, m)

	streamer := ws.NewStreamer(cfg.StreamWordDelay, m)
	wsHandler := ws.NewHandler(pipeline, engine, streamer, cfg.ConnBurstTokens, cfg.ConnRefillPerSec, log, m)

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, m))

	setupRoutes(router, cfg, pipeline, wsHandler, engine, index, registry)

	// No write timeout: WebSocket connections stay open indefinitely.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

// buildIndex scrapes the SFU corpus, chunks it, and embeds it into the
// vector index. Runs once at startup.
func buildIndex(ctx context.Context, index *rag.Index, fetcher *scraper.Client, cfg *config.Config, log *logger.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic while building document index")
		}
	}()

	start := time.Now()
	docs := scraper.LoadCorpus(ctx, fetcher, log)
	if len(docs) == 0 {
		log.Warn("Corpus scrape returned no documents, retrieval stays disabled")
		return
	}

	chunker := rag.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err := index.Build(ctx, docs, chunker); err != nil {
		log.WithError(err).Error("Failed to build document index")
		return
	}

	log.WithField("documents", len(docs)).
		WithField("chunks", index.Count()).
		WithField("duration", time.Since(start).Round(time.Millisecond).String()).
		Info("Document index ready")
}
