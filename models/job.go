package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Import job statuses. A job is created already processing; there is no
// pending state.
const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ImportJob tracks one invocation of the race-import pipeline. Clients poll
// this record by id until status leaves processing.
type ImportJob struct {
	bun.BaseModel `bun:"table:import_jobs,alias:ij"`

	ID        string          `bun:"id,pk" json:"id"`
	Date      string          `bun:"date,notnull,type:date" json:"date"`
	Status    string          `bun:"status,notnull" json:"status"`
	Progress  int             `bun:"progress,notnull,default:0" json:"progress"`
	Error     *string         `bun:"error" json:"error,omitempty"`
	Summary   json.RawMessage `bun:"summary,notnull,type:jsonb" json:"summary"`
	CreatedAt time.Time       `bun:"created_at,notnull,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time       `bun:"updated_at,notnull,nullzero,default:current_timestamp" json:"updatedAt"`
}
