package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ateliervote/concours/internal/app"
	"github.com/ateliervote/concours/internal/auth"
	"github.com/ateliervote/concours/internal/config"
	"github.com/ateliervote/concours/internal/logger"
	"github.com/ateliervote/concours/internal/platform"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	if len(os.Args) > 1 && os.Args[1] == "-version" {
		fmt.Printf("concours %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if cfg.ContestID == "" {
		cfg.ContestID = uuid.NewString()
	}

	// Setup admin authentication
	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	// Create logger with specified level
	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	// The real chat adapter posts events over HTTP and is deployed
	// separately; thread acquisition runs against the local mock.
	threads := platform.NewMockThreadCreator()

	a, err := app.New(appLog, cfg, threads, adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", cfg.Port)
	appLog.Info("Admin password", "password", password)
	appLog.Info("Contest", "id", cfg.ContestID, "categories", len(cfg.Categories))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal(err)
		}
	case sig := <-stop:
		appLog.Info("Shutting down", "signal", sig.String())
	}
}
