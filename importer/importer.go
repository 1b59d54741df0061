// Package importer implements the background race-import pipeline: it pulls
// a day's card from the racing-data provider, reconciles races and runners
// against the database, and fully replaces each runner's historical results
// and distance analysis, tracking per-category progress in an import job
// record that clients poll.
package importer

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/racedaylabs/raceday/models"
	"github.com/racedaylabs/raceday/provider"
)

// Source is the subset of the provider client the pipeline consumes.
type Source interface {
	Racecards(ctx context.Context, date string) ([]provider.Racecard, error)
	HorseResults(ctx context.Context, horseID string) ([]provider.ResultRace, error)
	HorseDistanceTimes(ctx context.Context, horseID string) (*provider.DistanceAnalysis, error)
}

// Config controls batch sizes and pacing for a pipeline run. Delays exist
// only to respect the provider's rate limit; zero values disable them.
type Config struct {
	RaceBatchSize   int
	RunnerBatchSize int
	RunnerDelay     time.Duration
	HorseCallDelay  time.Duration
	BatchDelay      time.Duration
	FetchTimeout    time.Duration
}

// DefaultConfig returns production pacing.
func DefaultConfig() Config {
	return Config{
		RaceBatchSize:   2,
		RunnerBatchSize: 2,
		RunnerDelay:     500 * time.Millisecond,
		HorseCallDelay:  time.Second,
		BatchDelay:      2 * time.Second,
		FetchTimeout:    30 * time.Second,
	}
}

// Importer drives the pipeline. One Run imports one date as a single
// sequential task; concurrent runs over overlapping dates are not
// coordinated, so delete-then-insert sequences for a horse shared between
// two simultaneous jobs can interleave.
type Importer struct {
	db   *bun.DB
	src  Source
	jobs JobSink
	cfg  Config
	log  *zap.Logger
}

func New(db *bun.DB, src Source, jobs JobSink, cfg Config, log *zap.Logger) *Importer {
	if cfg.RaceBatchSize <= 0 {
		cfg.RaceBatchSize = 1
	}
	if cfg.RunnerBatchSize <= 0 {
		cfg.RunnerBatchSize = 1
	}
	return &Importer{db: db, src: src, jobs: jobs, cfg: cfg, log: log}
}

// Start creates the job record and launches the pipeline in the background.
// The returned job id is the caller's only handle on the outcome; everything
// after creation is observed by polling the job record. Once the background
// run begins there is no way to cancel it.
func (imp *Importer) Start(ctx context.Context, date string) (string, error) {
	job, err := imp.jobs.Create(ctx, date)
	if err != nil {
		return "", err
	}

	go imp.Run(context.Background(), job)

	return job.ID, nil
}

// Run executes the pipeline to completion or failure. Exported so
// cmd/importday can run an import synchronously.
func (imp *Importer) Run(ctx context.Context, job *models.ImportJob) {
	stats := &Stats{}

	fctx := ctx
	if imp.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, imp.cfg.FetchTimeout)
		defer cancel()
	}

	cards, err := imp.src.Racecards(fctx, job.Date)
	if err != nil {
		imp.log.Error("day-card fetch failed",
			zap.String("job", job.ID), zap.String("date", job.Date), zap.Error(err))
		if ferr := imp.jobs.Fail(ctx, job, err, stats); ferr != nil {
			imp.log.Error("mark job failed", zap.String("job", job.ID), zap.Error(ferr))
		}
		return
	}

	imp.processRaces(ctx, job, cards, stats)
}

// sleep pauses for d, returning early if ctx is done.
func (imp *Importer) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
