package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okonev/gemchat/internal/config"
	"github.com/okonev/gemchat/internal/gemini"
	"github.com/okonev/gemchat/internal/handler"
	"github.com/okonev/gemchat/internal/model/persona"
	aiService "github.com/okonev/gemchat/internal/service/ai"
	chatService "github.com/okonev/gemchat/internal/service/chat"
	speechService "github.com/okonev/gemchat/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	// The provider client is always constructed; a missing API key surfaces
	// per send as a configuration error, so fixing the environment only
	// needs a restart, not a session reset.
	geminiClient := gemini.NewClient(cfg.Gemini)
	if cfg.Gemini.APIKey == "" {
		log.Println("warning: GEMINI_API_KEY is not set, sends will fail until it is provided")
	}

	aiSvc := aiService.NewService(geminiClient, cfg.Gemini)
	chatSvc := chatService.NewService(personaStore, aiSvc)

	// The speech service is always wired; when disabled it answers every
	// synthesis request with its unavailability notice.
	speechSvc := speechService.NewService(cfg.Speech)
	if cfg.Speech.Enabled {
		log.Println("speech synthesis enabled")
	} else {
		log.Println("speech synthesis disabled, speak requests will return a notice")
	}

	router := handler.NewRouter(personaStore, chatSvc, speechSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("gemchat backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
