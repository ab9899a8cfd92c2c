package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/electra-charging/sems/internal/adapter/http/fiber/handlers"
	"github.com/electra-charging/sems/internal/service/station"
	"github.com/electra-charging/sems/pkg/config"
)

const serviceName = "sems"

func main() {
	configPath := pflag.String("config", "", "Path to the station configuration JSON file (required)")
	port := pflag.Uint16("port", 3000, "Port to bind the server to")
	pflag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	if *configPath == "" {
		logger.Fatal("--config is required")
	}

	stationConfig, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load station configuration", zap.Error(err))
	}
	logger.Info("Loaded station configuration",
		zap.String("path", *configPath),
		zap.String("stationId", stationConfig.StationID),
		zap.Int("gridCapacity", stationConfig.GridCapacity),
		zap.Int("chargers", len(stationConfig.Chargers)),
	)

	state := station.NewState(*stationConfig, logger)
	app := handlers.NewRouter(state, logger)

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", *port)
		logger.Info("Starting HTTP Server", zap.String("service", serviceName), zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
