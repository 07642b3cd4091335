package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pjf-digital/consultai/internal/api"
	"github.com/pjf-digital/consultai/internal/config"
	"github.com/pjf-digital/consultai/internal/core"
	"github.com/pjf-digital/consultai/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize persistence
	kv, err := store.NewKV(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err), zap.String("dbPath", cfg.DatabaseURL))
	}
	defer kv.Close()

	convStore, err := store.NewConversationStore(kv, logger)
	if err != nil {
		logger.Fatal("failed to initialize conversation store", zap.Error(err))
	}
	profiles := store.NewProfileStore(kv, logger)

	// Initialize LLM service
	llmService, err := core.NewLLMService(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	// Initialize news cache and chat orchestration
	newsService := core.NewNewsService(cfg, logger)
	var guardrails *core.Guardrails
	if cfg.GuardrailsEnabled {
		guardrails = core.NewGuardrails(cfg.ForbiddenWords)
	}
	chatService := core.NewChatService(convStore, llmService, guardrails, logger)

	// Initialize API handler and router
	apiHandler := api.NewAPIHandler(chatService, newsService, convStore, profiles, logger)
	router := api.NewRouter(apiHandler, cfg.AllowedOrigins, logger)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not listen", zap.String("addr", serverAddr), zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting gracefully")
}
