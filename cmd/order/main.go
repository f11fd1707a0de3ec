package main

import (
	"context"
	"log"

	"github.com/PhiQuangHuy/order-service/internal/app"
	"github.com/PhiQuangHuy/order-service/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}
