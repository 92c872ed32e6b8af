package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rmn-lab/roster-api/internal/models"
)

// ClassroomRepository manages the per-room configuration row and the seat
// registry.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs a ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// GetOrCreate fetches the room configuration, creating the default row with
// screenshots enabled on first use.
func (r *ClassroomRepository) GetOrCreate(ctx context.Context, classroomID string) (*models.Classroom, error) {
	const insert = `INSERT INTO classrooms (classroom_id, screenshots_enabled, screenshot_interval, updated_at)
        VALUES ($1, true, 60, $2) ON CONFLICT (classroom_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, classroomID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("ensure classroom: %w", err)
	}
	var room models.Classroom
	const query = `SELECT classroom_id, screenshots_enabled, screenshot_interval, updated_at FROM classrooms WHERE classroom_id = $1`
	if err := r.db.GetContext(ctx, &room, query, classroomID); err != nil {
		return nil, fmt.Errorf("fetch classroom: %w", err)
	}
	return &room, nil
}

// SetScreenshotsEnabled flips the room capture switch.
func (r *ClassroomRepository) SetScreenshotsEnabled(ctx context.Context, classroomID string, enabled bool) error {
	const query = `UPDATE classrooms SET screenshots_enabled = $2, updated_at = $3 WHERE classroom_id = $1`
	if _, err := r.db.ExecContext(ctx, query, classroomID, enabled, time.Now().UTC()); err != nil {
		return fmt.Errorf("update classroom: %w", err)
	}
	return nil
}

// GetOrCreateWorkplace registers a numbered seat on first sight.
func (r *ClassroomRepository) GetOrCreateWorkplace(ctx context.Context, number int) (*models.Workplace, error) {
	const insert = `INSERT INTO workplaces (id, workplace_number, created_at)
        VALUES ($1, $2, $3) ON CONFLICT (workplace_number) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), number, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("ensure workplace: %w", err)
	}
	var workplace models.Workplace
	const query = `SELECT id, workplace_number, created_at FROM workplaces WHERE workplace_number = $1`
	if err := r.db.GetContext(ctx, &workplace, query, number); err != nil {
		return nil, fmt.Errorf("fetch workplace: %w", err)
	}
	return &workplace, nil
}
