// Package main runs a one-off re-enrichment pass over stored facts.
//
// Usage:
//
//	reenrich [-user <uuid>] [-batch-size 500] [-seed]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/finance-tracker/categorizer/config"
	"github.com/finance-tracker/categorizer/internal/application/usecase/loader"
	"github.com/finance-tracker/categorizer/internal/infra/db"
	"github.com/finance-tracker/categorizer/internal/infra/dependency"
)

func main() {
	userFlag := flag.String("user", "", "only re-enrich this user's facts")
	batchSize := flag.Int("batch-size", loader.DefaultReenrichBatchSize, "facts read and committed per page")
	seedFirst := flag.Bool("seed", false, "apply the seed catalogue before re-enriching")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	cfg.Reenrich.Enabled = false

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.SlogLevel(),
	})))

	input := loader.ReenrichInput{BatchSize: *batchSize}
	if *userFlag != "" {
		userID, err := uuid.Parse(*userFlag)
		if err != nil {
			slog.Error("Invalid user id", "user", *userFlag, "error", err)
			os.Exit(2)
		}
		input.UserID = &userID
	}

	database, err := db.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	injector, err := dependency.NewInjector(cfg, database.DB(), nil)
	if err != nil {
		slog.Error("Failed to wire dependencies", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *seedFirst {
		if err := injector.SeedCatalogue(ctx); err != nil {
			slog.Error("Seeding failed", "error", err)
			os.Exit(1)
		}
	}

	output, err := injector.Reenrich.Execute(ctx, input)
	if err != nil {
		slog.Error("Re-enrichment failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Re-enrichment finished",
		"scanned", output.Scanned,
		"updated", output.Updated,
		"manual", output.Manual,
		"failed", output.Failed,
	)
}
