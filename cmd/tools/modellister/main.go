// Command modellister is an operator diagnostic: it authenticates against
// the Generative Language API and prints every available model with its
// supported generation methods. Not part of the chat flow.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/okonev/gemchat/internal/config"
	"github.com/okonev/gemchat/internal/gemini"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env, using system environment variables: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.Gemini.APIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set; export it or add it to .env before running")
	}

	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := gemini.NewClient(cfg.Gemini)
	models, err := client.ListModels(ctx)
	if err != nil {
		log.Fatalf("failed to list models: %v", err)
	}

	for _, m := range models {
		fmt.Printf("%s %v\n", m.Name, m.SupportedGenerationMethods)
	}
}
