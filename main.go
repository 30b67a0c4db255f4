// main.go
// Application entry point: loads configuration, initializes the logger, and
// runs the race server until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SlavikCA/teamplay/internal/api"
	"github.com/SlavikCA/teamplay/internal/logger"
	"github.com/SlavikCA/teamplay/internal/util"
	"github.com/joho/godotenv"
)

const configPath = "server_config.json"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env: %v\n", err)
	}

	config, err := util.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v, using defaults\n", err)
	}

	logger.InitLogger(config.Log)
	serverLogger := logger.NewLogger("server")
	serverLogger.WithFields(map[string]interface{}{
		"addr":      config.Addr(),
		"keepalive": config.KeepaliveInterval().String(),
		"nats_url":  config.NatsURL,
		"log_level": config.Log.Level,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.StartServer(ctx, config, serverLogger); err != nil {
		serverLogger.Fatalf("Server error: %v", err)
	}
}
