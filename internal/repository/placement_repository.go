package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rmn-lab/roster-api/internal/models"
)

// PlacementRepository manages the append-only seating ledger.
type PlacementRepository struct {
	db *sqlx.DB
}

// NewPlacementRepository constructs a PlacementRepository.
func NewPlacementRepository(db *sqlx.DB) *PlacementRepository {
	return &PlacementRepository{db: db}
}

const placementDetailColumns = `p.id, p.workplace_id, p.created_at, p.user_id,
        u.username, u.first_name, u.last_name`

// Create appends a placement fact. Placements are immutable once written.
func (r *PlacementRepository) Create(ctx context.Context, placement *models.Placement) error {
	if placement.ID == "" {
		placement.ID = uuid.NewString()
	}
	if placement.CreatedAt.IsZero() {
		placement.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO placements (id, user_id, workplace_id, created_at)
        VALUES (:id, :user_id, :workplace_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, placement); err != nil {
		return fmt.Errorf("create placement: %w", err)
	}
	return nil
}

// FindByID fetches a placement joined with its user, scoped to a workplace so
// a deletion request cannot reach across seats.
func (r *PlacementRepository) FindByID(ctx context.Context, id, workplaceID string) (*models.PlacementDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM placements p JOIN users u ON u.id = p.user_id
        WHERE p.id = $1 AND p.workplace_id = $2`, placementDetailColumns)
	var detail models.PlacementDetail
	if err := r.db.GetContext(ctx, &detail, query, id, workplaceID); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch placement: %w", err)
	}
	detail.HydrateUser()
	return &detail, nil
}

// LatestForWorkplace returns the most recent placement for the exact
// workplace id string, or sql.ErrNoRows.
func (r *PlacementRepository) LatestForWorkplace(ctx context.Context, workplaceID string) (*models.PlacementDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM placements p JOIN users u ON u.id = p.user_id
        WHERE p.workplace_id = $1 ORDER BY p.created_at DESC LIMIT 1`, placementDetailColumns)
	var detail models.PlacementDetail
	if err := r.db.GetContext(ctx, &detail, query, workplaceID); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest placement: %w", err)
	}
	detail.HydrateUser()
	return &detail, nil
}

// LatestForAliases returns the most recent placement whose workplace id
// matches any of the spellings that resolve to one physical seat
// (e.g. "7" and "329-7"). Returns nil when none exist.
func (r *PlacementRepository) LatestForAliases(ctx context.Context, aliases []string) (*models.PlacementDetail, error) {
	if len(aliases) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM placements p JOIN users u ON u.id = p.user_id
        WHERE p.workplace_id IN (?) ORDER BY p.created_at DESC LIMIT 1`, placementDetailColumns), aliases)
	if err != nil {
		return nil, fmt.Errorf("build alias query: %w", err)
	}
	query = r.db.Rebind(query)
	var detail models.PlacementDetail
	if err := r.db.GetContext(ctx, &detail, query, args...); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest placement for aliases: %w", err)
	}
	detail.HydrateUser()
	return &detail, nil
}

// ListWindow returns all placements created inside [from, to], ascending by
// creation time. Both bounds are inclusive.
func (r *PlacementRepository) ListWindow(ctx context.Context, from, to time.Time) ([]models.PlacementDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM placements p JOIN users u ON u.id = p.user_id
        WHERE p.created_at >= $1 AND p.created_at <= $2 ORDER BY p.created_at ASC`, placementDetailColumns)
	var details []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &details, query, from, to); err != nil {
		return nil, fmt.Errorf("list placements in window: %w", err)
	}
	for i := range details {
		details[i].HydrateUser()
	}
	return details, nil
}

// ListForWorkplaceSince returns placements for one workplace id created on or
// after the cutoff, ascending. Used by the seat suggestion ranking.
func (r *PlacementRepository) ListForWorkplaceSince(ctx context.Context, workplaceID string, since time.Time) ([]models.PlacementDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM placements p JOIN users u ON u.id = p.user_id
        WHERE p.workplace_id = $1 AND p.created_at >= $2 ORDER BY p.created_at ASC`, placementDetailColumns)
	var details []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &details, query, workplaceID, since); err != nil {
		return nil, fmt.Errorf("list placements for workplace: %w", err)
	}
	for i := range details {
		details[i].HydrateUser()
	}
	return details, nil
}

// Delete removes a placement by id.
func (r *PlacementRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM placements WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete placement: %w", err)
	}
	return nil
}
