package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"socialgap/internal"
	"socialgap/internal/config"
	"socialgap/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level), appConfig.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Fatal("failed to create application container", zap.Error(err))
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.Init(context.Background()); err != nil {
		logger.Fatal("failed to load population", zap.Error(err))
	}

	handler, err := appContainer.HTTPHandler()
	if err != nil {
		logger.Fatal("failed to build HTTP handler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              container.Addr(appConfig.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("starting socialgap server", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
