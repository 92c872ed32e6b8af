package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/pkg/config"
	"github.com/rmn-lab/roster-api/pkg/errors"
)

// AuthService issues and validates the admin session tokens that guard
// group management and the capture toggle.
type AuthService struct {
	cfg config.AuthConfig
	log *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(cfg config.AuthConfig, log *zap.Logger) *AuthService {
	return &AuthService{cfg: cfg, log: log}
}

// Login checks the shared admin password against the configured bcrypt
// hash and issues a signed token.
func (s *AuthService) Login(req models.AdminLoginRequest) (*models.AdminLoginResponse, error) {
	if s.cfg.AdminPasswordHash == "" {
		return nil, errors.Clone(errors.ErrInternal, "admin password is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn("admin login rejected")
		return nil, errors.Clone(errors.ErrUnauthorized, "invalid password")
	}

	now := time.Now()
	claims := models.JWTClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiration)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	return &models.AdminLoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.cfg.JWTExpiration.Seconds()),
	}, nil
}

// Validate parses a bearer token and returns its claims.
func (s *AuthService) Validate(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Clone(errors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Clone(errors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}
