package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/unifyd/backend/internal/infrastructure/config"
	"github.com/unifyd/backend/internal/infrastructure/logger"
	"github.com/unifyd/backend/internal/infrastructure/persistence"
	"github.com/unifyd/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	// Parse flags
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	switch command {
	case "up":
		log.Info("Running schema migration")
		if err := db.DB.AutoMigrate(models.All()...); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Schema migrated successfully")
	case "status":
		migrator := db.DB.Migrator()
		for _, model := range models.All() {
			fmt.Printf("%-40T %v\n", model, migrator.HasTable(model))
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command>

Commands:
  up       Apply the schema to the configured database (default)
  status   Show which tables exist

Flags:
  -log-level   Log level (debug, info, warn, error)`)
}
