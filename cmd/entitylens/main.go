// Package main is the entitylens command line entry point: one extraction
// per invocation, result printed as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/entitylens/entitylens-api/internal/config"
	"github.com/entitylens/entitylens-api/internal/logging"
	"github.com/entitylens/entitylens-api/internal/models"
	"github.com/entitylens/entitylens-api/internal/service"
	"github.com/entitylens/entitylens-api/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	entityFlag := flag.String("entity", "company", "entity type: company, profile or listing")
	targetFlag := flag.String("target", "", "target URL, domain or username")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Get().String())
		return 0
	}

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	logger := logging.SetDefault()
	logger.Info("starting entitylens", "version", version.Get().Version)

	if *targetFlag == "" {
		logger.Error("-target is required")
		flag.Usage()
		return 2
	}
	entity, ok := models.ParseEntityType(*entityFlag)
	if !ok {
		logger.Error("unknown entity type", "entity", *entityFlag)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return 1
	}

	svc, err := service.NewExtractionService(cfg, logger)
	if err != nil {
		logger.Error("failed to build extraction service", "error", err)
		return 1
	}
	defer func() { _ = svc.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := svc.Extract(ctx, entity, *targetFlag)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("failed to encode result", "error", err)
		return 1
	}
	fmt.Println(string(out))

	if !result.Success {
		return 1
	}
	return 0
}
