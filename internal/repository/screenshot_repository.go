package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rmn-lab/roster-api/internal/models"
)

// ScreenshotRepository manages screenshot metadata rows. The retention engine
// keeps these in sync with the on-disk files.
type ScreenshotRepository struct {
	db *sqlx.DB
}

// NewScreenshotRepository constructs a ScreenshotRepository.
func NewScreenshotRepository(db *sqlx.DB) *ScreenshotRepository {
	return &ScreenshotRepository{db: db}
}

// Create records a freshly ingested capture.
func (r *ScreenshotRepository) Create(ctx context.Context, shot *models.Screenshot) error {
	if shot.ID == "" {
		shot.ID = uuid.NewString()
	}
	if shot.CreatedAt.IsZero() {
		shot.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO screenshots (id, workplace_number, filename, user_id, created_at)
        VALUES (:id, :workplace_number, :filename, :user_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shot); err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	return nil
}

// DeleteByFilename removes the metadata row matching a purged file.
func (r *ScreenshotRepository) DeleteByFilename(ctx context.Context, workplaceNumber int, filename string) error {
	const query = `DELETE FROM screenshots WHERE workplace_number = $1 AND filename = $2`
	if _, err := r.db.ExecContext(ctx, query, workplaceNumber, filename); err != nil {
		return fmt.Errorf("delete screenshot record: %w", err)
	}
	return nil
}

// ListByWorkplace returns capture metadata for one seat, newest first, with
// the occupant display name when one was resolved at ingest time.
func (r *ScreenshotRepository) ListByWorkplace(ctx context.Context, workplaceNumber int) ([]models.ScreenshotDetail, error) {
	const query = `SELECT s.filename, s.created_at,
        CASE WHEN u.id IS NULL THEN NULL ELSE u.last_name || ' ' || u.first_name END AS user_name
        FROM screenshots s LEFT JOIN users u ON u.id = s.user_id
        WHERE s.workplace_number = $1 ORDER BY s.created_at DESC`
	var details []models.ScreenshotDetail
	if err := r.db.SelectContext(ctx, &details, query, workplaceNumber); err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	return details, nil
}

// LatestPerWorkplace returns the newest capture reference for every seat in
// one query. Feeds the room snapshot.
func (r *ScreenshotRepository) LatestPerWorkplace(ctx context.Context) ([]models.LatestScreenshot, error) {
	const query = `SELECT DISTINCT ON (workplace_number) workplace_number, filename, created_at
        FROM screenshots ORDER BY workplace_number, created_at DESC`
	var latest []models.LatestScreenshot
	if err := r.db.SelectContext(ctx, &latest, query); err != nil {
		return nil, fmt.Errorf("latest screenshots: %w", err)
	}
	return latest, nil
}
