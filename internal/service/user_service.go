package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/pkg/errors"
)

// fuzzyThreshold is the minimum normalized similarity for a surname to be
// proposed as a likely match.
const fuzzyThreshold = 0.6

type identityUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByName(ctx context.Context, lastName, firstName string) (*models.User, error)
	SearchBySurnamePrefix(ctx context.Context, prefix string) ([]models.User, error)
	SearchBySurname(ctx context.Context, fragment string, limit int) ([]models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateUsername(ctx context.Context, id, username string) error
}

type loginURLProvider interface {
	Configured() bool
	LoginURL(ctx context.Context, email, wantsURL string) (string, error)
}

type seatAssigner interface {
	Assign(ctx context.Context, seat int, req dto.AssignRequest) (*dto.AssignResponse, *ConstraintDenial, error)
	AssignStation(ctx context.Context, workplaceID string, req dto.AssignRequest) (*dto.AssignResponse, error)
}

// UserService resolves kiosk logins against the mirrored roster. Lookup
// runs in two explicit stages: an exact surname+name match first, then a
// fuzzy pass over the surname-prefix candidate set.
type UserService struct {
	users    identityUserStore
	moodle   loginURLProvider
	seats    seatAssigner
	validate *validator.Validate
	log      *zap.Logger
}

// NewUserService constructs a UserService. The assigner is optional; with
// nil the identify flow resolves identity without seating anyone.
func NewUserService(users identityUserStore, moodle loginURLProvider, seats seatAssigner, log *zap.Logger) *UserService {
	return &UserService{users: users, moodle: moodle, seats: seats, validate: validator.New(), log: log}
}

// Search returns lightweight autocomplete entries by surname fragment.
func (s *UserService) Search(ctx context.Context, fragment string, limit int) ([]dto.UserSearchItem, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []dto.UserSearchItem{}, nil
	}
	found, err := s.users.SearchBySurname(ctx, fragment, limit)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	items := make([]dto.UserSearchItem, 0, len(found))
	for _, u := range found {
		items = append(items, dto.UserSearchItem{
			Surname: u.LastName,
			Name:    u.FirstName,
			Display: u.DisplayName(),
		})
	}
	return items, nil
}

// Identify resolves the student on the login form. A non-nil denial means
// the resolved user could not take the requested seat.
func (s *UserService) Identify(ctx context.Context, req dto.IdentifyRequest) (*dto.IdentifyResponse, *ConstraintDenial, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid payload")
	}
	user, proposals, err := s.resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if user == nil && len(proposals) > 0 {
		return &dto.IdentifyResponse{Status: dto.IdentifyProposals, Proposals: proposals}, nil, nil
	}

	status := dto.IdentifyMatched
	if user == nil {
		if !req.Confirm {
			return &dto.IdentifyResponse{Status: dto.IdentifyProposals, Proposals: []models.User{}}, nil, nil
		}
		user, err = s.createUser(ctx, req)
		if err != nil {
			return nil, nil, err
		}
		status = dto.IdentifyCreated
	}

	resp := &dto.IdentifyResponse{Status: status, User: user}

	if s.seats != nil && req.WorkplaceID != "" {
		if seat, ok := models.ExtractSeat(req.WorkplaceID); ok {
			assigned, denial, err := s.seats.Assign(ctx, seat, dto.AssignRequest{UserID: user.ID})
			if err != nil {
				return nil, nil, err
			}
			if denial != nil {
				return nil, denial, nil
			}
			resp.Placement = &assigned.Placement
		} else {
			// Teacher desk and other unnumbered stations still get a
			// placement record; no seat means no group rule can block it.
			assigned, err := s.seats.AssignStation(ctx, req.WorkplaceID, dto.AssignRequest{UserID: user.ID})
			if err != nil {
				return nil, nil, err
			}
			resp.Placement = &assigned.Placement
		}
	}

	if s.moodle != nil && s.moodle.Configured() && user.Email != "" {
		loginURL, err := s.moodle.LoginURL(ctx, user.Email, req.WantsURL)
		if err != nil {
			s.log.Error("lms login url request failed", zap.String("user_id", user.ID), zap.Error(err))
			return nil, nil, errors.WithCause(errors.ErrUpstreamAuth, err)
		}
		resp.LoginURL = loginURL
	}
	return resp, nil, nil
}

// resolve finds the user or assembles fuzzy proposals. Exactly one of the
// returns is populated on success; both empty means nothing matched.
func (s *UserService) resolve(ctx context.Context, req dto.IdentifyRequest) (*models.User, []models.User, error) {
	if req.UserID != "" {
		user, err := s.users.FindByID(ctx, req.UserID)
		if err != nil {
			return nil, nil, errors.WithCause(errors.ErrInternal, err)
		}
		if user == nil {
			return nil, nil, errors.Clone(errors.ErrNotFound, "user not found")
		}
		return user, nil, nil
	}

	lastName := strings.TrimSpace(req.LastName)
	firstName := strings.TrimSpace(req.FirstName)
	if lastName == "" {
		return nil, nil, errors.Clone(errors.ErrValidation, "last_name is required")
	}

	user, err := s.users.FindByName(ctx, lastName, firstName)
	if err != nil {
		return nil, nil, errors.WithCause(errors.ErrInternal, err)
	}
	if user != nil {
		return user, nil, nil
	}
	if req.Confirm {
		// Explicit confirmation skips the fuzzy stage and creates.
		return nil, nil, nil
	}

	prefix := firstRunes(lastName, 2)
	candidates, err := s.users.SearchBySurnamePrefix(ctx, prefix)
	if err != nil {
		return nil, nil, errors.WithCause(errors.ErrInternal, err)
	}
	var proposals []models.User
	for _, candidate := range candidates {
		if surnameSimilarity(lastName, candidate.LastName) >= fuzzyThreshold {
			proposals = append(proposals, candidate)
		}
	}
	return nil, proposals, nil
}

func (s *UserService) createUser(ctx context.Context, req dto.IdentifyRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, errors.Clone(errors.ErrValidation, "email is required to create an account")
	}
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	if taken {
		return nil, errors.Clone(errors.ErrConflict, "email is already registered")
	}

	user := &models.User{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
	}
	// The id doubles as a collision-proof placeholder until the handle
	// is generated below.
	user.Username = user.ID
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}

	username, err := s.generateUsername(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateUsername(ctx, user.ID, username); err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	user.Username = username

	s.log.Info("student account created",
		zap.String("user_id", user.ID),
		zap.String("username", username))
	return user, nil
}

// generateUsername builds "<initial><surname>" in latin letters, with a
// short id suffix when the plain handle is already taken.
func (s *UserService) generateUsername(ctx context.Context, user *models.User) (string, error) {
	base := Transliterate(firstRunes(user.FirstName, 1)) + Transliterate(user.LastName)
	if base == "" {
		base = "student"
	}
	existing, err := s.users.FindByUsername(ctx, base)
	if err != nil {
		return "", errors.WithCause(errors.ErrInternal, err)
	}
	if existing == nil {
		return base, nil
	}
	return fmt.Sprintf("%s%s", base, user.ID[:8]), nil
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// surnameSimilarity is 1 minus the normalized edit distance between the
// lowercased surnames.
func surnameSimilarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
