package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/pkg/config"
)

func newAuthService(t *testing.T, password string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AuthConfig{
		AdminPasswordHash: string(hash),
		JWTSecret:         "test-secret",
		JWTExpiration:     time.Hour,
	}, zap.NewNop())
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newAuthService(t, "room-329")

	resp, err := svc.Login(models.AdminLoginRequest{Password: "room-329"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthService(t, "room-329")

	_, err := svc.Login(models.AdminLoginRequest{Password: "wrong"})
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newAuthService(t, "room-329")

	_, err := svc.Validate("not-a-token")
	assert.Error(t, err)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	svc := newAuthService(t, "room-329")
	other := NewAuthService(config.AuthConfig{
		AdminPasswordHash: svc.cfg.AdminPasswordHash,
		JWTSecret:         "other-secret",
		JWTExpiration:     time.Hour,
	}, zap.NewNop())

	resp, err := other.Login(models.AdminLoginRequest{Password: "room-329"})
	require.NoError(t, err)

	_, err = svc.Validate(resp.AccessToken)
	assert.Error(t, err)
}
