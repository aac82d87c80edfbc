package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"wareflow/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config (env, .env overlay).
// 2) Build app wiring.
// 3) Run dispatcher, consumer and scheduler until SIGINT/SIGTERM.
func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWorker(ctx)
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("worker stopped with error: %v", err)
	}
}
