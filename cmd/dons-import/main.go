// Command dons-import loads a donations JSON export into the sqlite archive,
// so the dashboard can serve it with DATA_BACKEND=sqlite.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"dons/internal/amqp"
	"dons/internal/config"
	"dons/internal/ingest"
	"dons/internal/log"
	"dons/internal/source/file"
	"dons/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentIngest})
	log.SetDefault(logger)

	cfg := config.Load()

	var (
		path       = flag.String("file", cfg.DonationsFile, "donations JSON file to import")
		clearFirst = flag.Bool("clear", false, "clear the archive before importing")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	raws, err := file.New(*path).ReadAll(ctx)
	if err != nil {
		logger.Error("Failed to read donations file", "error", err, log.FieldSource, *path)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	if *clearFirst {
		if err := repo.Clear(ctx); err != nil {
			logger.Error("Failed to clear archive", "error", err)
			os.Exit(1)
		}
	}

	inserted, err := repo.ImportBatch(ctx, raws)
	if err != nil {
		logger.Error("Import failed", "error", err)
		os.Exit(1)
	}

	table := ingest.Clean(raws, ingest.Options{Location: cfg.Location()})
	logger.Info("Import finished",
		log.FieldSource, *path,
		log.FieldRecordCount, inserted,
		log.FieldDropped, len(raws)-inserted,
		log.FieldTotalAmount, table.TotalAmount())

	// Announce the change so a running worker re-exports its snapshot.
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, import not announced", "error", err)
			return
		}
		defer client.Close()

		if err := client.PublishDatasetRefresh(ctx, "sqlite", len(table), table.TotalAmount()); err != nil {
			logger.Warn("Failed to announce import", "error", err)
		}
	}
}
