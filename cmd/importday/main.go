// cmd/importday/main.go
// Runs one date's race import synchronously, without the HTTP server.
//
// Usage:
//
//	go run ./cmd/importday -date 2026-08-28
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	applog "github.com/racedaylabs/raceday/logger"

	"github.com/racedaylabs/raceday/config"
	bundb "github.com/racedaylabs/raceday/db"
	"github.com/racedaylabs/raceday/importer"
	"github.com/racedaylabs/raceday/provider"
)

func main() {
	date := flag.String("date", "", "date to import, YYYY-MM-DD (required)")
	flag.Parse()

	if *date == "" {
		log.Fatal("-date is required")
	}
	if _, err := time.Parse("2006-01-02", *date); err != nil {
		log.Fatal("-date must be YYYY-MM-DD")
	}

	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables:", err)
	}

	client := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderUsername, cfg.ProviderPassword)
	jobs := importer.NewJobs(db, logger)

	impCfg := importer.Config{
		RaceBatchSize:   cfg.ImportRaceBatch,
		RunnerBatchSize: cfg.ImportRunnerBatch,
		RunnerDelay:     cfg.ImportRunnerDelay,
		HorseCallDelay:  cfg.ImportHorseDelay,
		BatchDelay:      cfg.ImportBatchDelay,
		FetchTimeout:    cfg.ProviderTimeout,
	}
	imp := importer.New(db, client, jobs, impCfg, logger)

	job, err := jobs.Create(ctx, *date)
	if err != nil {
		log.Fatal("create job:", err)
	}
	fmt.Printf("job %s started for %s\n", job.ID, *date)

	imp.Run(ctx, job)

	summary, _ := json.MarshalIndent(json.RawMessage(job.Summary), "", "  ")
	fmt.Printf("job %s finished: status=%s progress=%d\nsummary: %s\n",
		job.ID, job.Status, job.Progress, summary)
	if job.Error != nil {
		fmt.Printf("error: %s\n", *job.Error)
	}
}
