package storage

import (
	"context"
	"errors"
	"time"

	"armada/pkg/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// RunStore defines the data access layer for run history.
type RunStore interface {
	// CreateRun persists a new run request.
	CreateRun(ctx context.Context, run *models.Run) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)

	// ListRuns returns recent runs, newest first, with pagination.
	ListRuns(ctx context.Context, limit, offset int) ([]models.Run, error)

	// ListRunsForService returns recent runs for one service.
	ListRunsForService(ctx context.Context, service string, limit int) ([]models.Run, error)

	// UpdateRunState marks a run as running on a node.
	UpdateRunState(ctx context.Context, id uuid.UUID, nodeID string, startedAt time.Time) error

	// UpdateResult marks a run as finished.
	UpdateResult(ctx context.Context, id uuid.UUID, status models.RunStatus, exitCode int, timedOut bool, outputURI string) error

	// MarkOrphansAsFailed fails runs stuck in RUNNING state on dead nodes.
	MarkOrphansAsFailed(ctx context.Context, activeNodeIDs []string) (int64, error)
}

// Queue defines the mechanism for dispatching runs to agents.
type Queue interface {
	// Push adds a run to the pending queue.
	Push(ctx context.Context, run *models.Run) error

	// Pop retrieves a run from the queue for a specific consumer group.
	Pop(ctx context.Context, group string, consumer string) (string, *models.Run, error)

	// Ack acknowledges a run as processed.
	Ack(ctx context.Context, group string, msgID string) error

	// EnsureGroup ensures the consumer group exists.
	EnsureGroup(ctx context.Context, group string) error

	// Len reports the number of entries in the pending stream.
	Len(ctx context.Context) (int64, error)
}

// OutputStore persists the captured output of completed runs.
type OutputStore interface {
	// Store saves output and returns a reference path/URL.
	Store(ctx context.Context, runID string, output []byte) (string, error)

	// Retrieve fetches output by reference.
	Retrieve(ctx context.Context, reference string) ([]byte, error)
}
