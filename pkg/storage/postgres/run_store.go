package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"armada/pkg/models"
	"armada/pkg/storage"
)

type RunStore struct {
	db *gorm.DB
}

// NewRunStore initializes the GORM connection and migrates the run schema.
func NewRunStore(connString string) (*RunStore, error) {
	config := &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Warn),
		PrepareStmt: true, // Cache prepared statements for performance
	}

	db, err := gorm.Open(postgres.Open(connString), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.Run{}); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return &RunStore{db: db}, nil
}

func (s *RunStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateRun persists a new run request.
func (s *RunStore) CreateRun(ctx context.Context, run *models.Run) error {
	if run.EnqueuedAt.IsZero() {
		run.EnqueuedAt = time.Now()
	}
	result := s.db.WithContext(ctx).Create(run)
	if result.Error != nil {
		return fmt.Errorf("failed to create run: %w", result.Error)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	var run models.Run
	result := s.db.WithContext(ctx).First(&run, "id = ?", id)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, result.Error
	}
	return &run, nil
}

// ListRuns returns recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit, offset int) ([]models.Run, error) {
	var runs []models.Run

	result := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&runs)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list runs: %w", result.Error)
	}
	return runs, nil
}

// ListRunsForService returns recent runs for one service.
func (s *RunStore) ListRunsForService(ctx context.Context, service string, limit int) ([]models.Run, error) {
	var runs []models.Run

	result := s.db.WithContext(ctx).
		Where("service = ?", service).
		Order("created_at desc").
		Limit(limit).
		Find(&runs)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", service, result.Error)
	}
	return runs, nil
}

// UpdateRunState marks a run as running on a node.
func (s *RunStore) UpdateRunState(ctx context.Context, id uuid.UUID, nodeID string, startedAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.Run{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.RunRunning,
			"node_id":    nodeID,
			"started_at": startedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateResult marks a run as finished.
func (s *RunStore) UpdateResult(ctx context.Context, id uuid.UUID, status models.RunStatus, exitCode int, timedOut bool, outputURI string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&models.Run{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"exit_code":    exitCode,
			"timed_out":    timedOut,
			"output_uri":   outputURI,
			"completed_at": now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkOrphansAsFailed fails RUNNING runs whose node is no longer alive.
func (s *RunStore) MarkOrphansAsFailed(ctx context.Context, activeNodeIDs []string) (int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Run{}).
		Where("status = ?", models.RunRunning)

	if len(activeNodeIDs) > 0 {
		query = query.Where("node_id NOT IN ?", activeNodeIDs)
	}

	result := query.Updates(map[string]interface{}{
		"status":       models.RunFailed,
		"completed_at": time.Now(),
	})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark orphans: %w", result.Error)
	}
	return result.RowsAffected, nil
}
