package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rmn-lab/roster-api/internal/models"
)

// UserRepository manages persistence for the mirrored student identities.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, first_name, last_name, email, created_at"

// FindByID fetches a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user by id: %w", err)
	}
	return &user, nil
}

// FindByUsername fetches a user by login handle.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE username = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user by username: %w", err)
	}
	return &user, nil
}

// FindByEmail fetches a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user by email: %w", err)
	}
	return &user, nil
}

// FindByName fetches the user whose surname and first name match exactly.
func (r *UserRepository) FindByName(ctx context.Context, lastName, firstName string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE last_name = $1 AND first_name = $2", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, lastName, firstName); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user by name: %w", err)
	}
	return &user, nil
}

// SearchBySurnamePrefix returns the fuzzy-match candidate set: all users
// whose surname starts with the given prefix, case-insensitively.
func (r *UserRepository) SearchBySurnamePrefix(ctx context.Context, prefix string) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE LOWER(last_name) LIKE $1 ORDER BY last_name, first_name", userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, strings.ToLower(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("search users by surname prefix: %w", err)
	}
	return users, nil
}

// SearchBySurname returns users whose surname contains the fragment,
// case-insensitively, capped for autocomplete use.
func (r *UserRepository) SearchBySurname(ctx context.Context, fragment string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM users WHERE LOWER(last_name) LIKE $1 ORDER BY last_name, first_name LIMIT %d", userColumns, limit)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, "%"+strings.ToLower(fragment)+"%"); err != nil {
		return nil, fmt.Errorf("search users by surname: %w", err)
	}
	return users, nil
}

// ExistsByEmail checks whether any user already owns the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM users WHERE email = $1 LIMIT 1", email)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, username, first_name, last_name, email, created_at)
        VALUES (:id, :username, :first_name, :last_name, :email, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUsername rewrites the generated login handle after the id is known.
func (r *UserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE users SET username = $2 WHERE id = $1", id, username); err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	return nil
}
