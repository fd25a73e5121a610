package main

import (
	"context"
	"log"

	"visionvoice-be/internal/bootstrap"
	"visionvoice-be/internal/config"
	"visionvoice-be/internal/server"
	"visionvoice-be/internal/tracer"
	"visionvoice-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration
	cfg := config.Load()

	color.Cyan("VisionVoice backend")
	color.Cyan("  env: %s  dev-mode: %v", cfg.App.Environment, cfg.App.DevMode)

	// 2. Database
	gormDB, err := database.NewGormDB(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Dependency container
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// 4. Background consumer
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. HTTP server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
