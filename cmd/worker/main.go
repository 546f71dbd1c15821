package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"studio/internal/app/bootstrap"

	"github.com/joho/godotenv"
)

// Worker process entrypoint.
// Data flow:
// 1) Load .env (optional) and config.
// 2) Build app wiring.
// 3) Run schedulers (lifecycle advancer, settlement, outbox relay) and the
//    prize notification consumer until SIGINT/SIGTERM.
func main() {
	_ = godotenv.Load()
	log.Println("contest engine worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Printf("contest engine worker stopped with error: %v", err)
	}
}
