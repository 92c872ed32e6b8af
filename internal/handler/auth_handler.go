package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/internal/service"
	appErrors "github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/response"
)

// AuthHandler exposes the admin login endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Exchange the admin password for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.AdminLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "password is required"))
		return
	}
	resp, err := h.auth.Login(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
