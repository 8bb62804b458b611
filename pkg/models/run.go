package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunStatus represents the state of a command run in the system.
type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunSucceeded RunStatus = "SUCCEEDED"
	RunFailed    RunStatus = "FAILED"
	RunTimedOut  RunStatus = "TIMED_OUT"
)

// EnvVars is the child environment for a run, stored as JSONB.
type EnvVars map[string]string

func (e *EnvVars) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, e)
}

func (e EnvVars) Value() (driver.Value, error) {
	if e == nil {
		return []byte("null"), nil
	}
	return json.Marshal(e)
}

// Run is one command invocation: what was asked for, where it ran and how
// it ended. The captured output itself lives in the output store; OutputURI
// points at it.
type Run struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Service string    `json:"service" gorm:"not null;index"`
	Command string    `json:"command" gorm:"not null"`

	// Log routing; Component empty means no per-line log forwarding.
	Component string `json:"component"`
	Level     string `json:"level"`
	Cluster   string `json:"cluster"`
	Instance  string `json:"instance"`

	Env            EnvVars `json:"env" gorm:"type:jsonb"`
	TimeoutSeconds int     `json:"timeout_seconds"`

	Status    RunStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	ExitCode  int       `json:"exit_code"`
	TimedOut  bool      `json:"timed_out"`
	OutputURI string    `json:"output_uri"`
	NodeID    *string   `json:"node_id" gorm:"index"`

	EnqueuedAt  time.Time      `json:"enqueued_at"`
	StartedAt   *time.Time     `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"` // Soft Delete support
}

// BeforeCreate hook to generate UUID if not present
func (r *Run) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// StatusForResult maps an execution outcome to a run status.
func StatusForResult(exitCode int, timedOut bool) RunStatus {
	switch {
	case timedOut:
		return RunTimedOut
	case exitCode == 0:
		return RunSucceeded
	default:
		return RunFailed
	}
}
