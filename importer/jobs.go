package importer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/racedaylabs/raceday/models"
)

// JobSink receives job lifecycle updates from a pipeline run. Jobs is the
// production implementation; tests wrap it to observe progress writes.
type JobSink interface {
	Create(ctx context.Context, date string) (*models.ImportJob, error)
	UpdateProgress(ctx context.Context, job *models.ImportJob, percent int, stats *Stats)
	Complete(ctx context.Context, job *models.ImportJob, stats *Stats) error
	Fail(ctx context.Context, job *models.ImportJob, cause error, stats *Stats) error
}

// Jobs persists ImportJob lifecycle transitions. Callers are expected to
// call Create once and then exactly one of Complete or Fail; no state
// machine guards against misuse.
type Jobs struct {
	db  *bun.DB
	log *zap.Logger
}

func NewJobs(db *bun.DB, log *zap.Logger) *Jobs {
	return &Jobs{db: db, log: log}
}

// Create inserts a job row already in the processing state with zeroed stats.
func (j *Jobs) Create(ctx context.Context, date string) (*models.ImportJob, error) {
	summary, err := json.Marshal(&Stats{})
	if err != nil {
		return nil, err
	}

	job := &models.ImportJob{
		ID:       uuid.NewString(),
		Date:     date,
		Status:   models.JobStatusProcessing,
		Progress: 0,
		Summary:  summary,
	}

	if _, err := j.db.NewInsert().Model(job).Exec(ctx); err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}
	return job, nil
}

// UpdateProgress writes progress and the stats snapshot. Best effort: a
// failed write is logged and swallowed, progress reporting must never abort
// the pipeline.
func (j *Jobs) UpdateProgress(ctx context.Context, job *models.ImportJob, percent int, stats *Stats) {
	summary, err := json.Marshal(stats)
	if err != nil {
		j.log.Warn("marshal job summary failed", zap.String("job", job.ID), zap.Error(err))
		return
	}

	_, err = j.db.NewUpdate().Model((*models.ImportJob)(nil)).
		Set("progress = ?", percent).
		Set("summary = ?", string(summary)).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", job.ID).
		Exec(ctx)
	if err != nil {
		j.log.Warn("update job progress failed", zap.String("job", job.ID), zap.Error(err))
		return
	}

	job.Progress = percent
	job.Summary = summary
}

// Complete marks the job finished with full progress and the final stats.
func (j *Jobs) Complete(ctx context.Context, job *models.ImportJob, stats *Stats) error {
	summary, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	_, err = j.db.NewUpdate().Model((*models.ImportJob)(nil)).
		Set("status = ?", models.JobStatusCompleted).
		Set("progress = 100").
		Set("summary = ?", string(summary)).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", job.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("complete import job: %w", err)
	}

	job.Status = models.JobStatusCompleted
	job.Progress = 100
	job.Summary = summary
	return nil
}

// Fail marks the job failed, recording the cause and whatever stats had
// accumulated. Progress is left at its last written value.
func (j *Jobs) Fail(ctx context.Context, job *models.ImportJob, cause error, stats *Stats) error {
	summary, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	msg := cause.Error()

	_, err = j.db.NewUpdate().Model((*models.ImportJob)(nil)).
		Set("status = ?", models.JobStatusFailed).
		Set("error = ?", msg).
		Set("summary = ?", string(summary)).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", job.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fail import job: %w", err)
	}

	job.Status = models.JobStatusFailed
	job.Error = &msg
	job.Summary = summary
	return nil
}
