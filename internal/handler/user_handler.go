package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/service"
	appErrors "github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/response"
)

type identityOps interface {
	Search(ctx context.Context, fragment string, limit int) ([]dto.UserSearchItem, error)
	Identify(ctx context.Context, req dto.IdentifyRequest) (*dto.IdentifyResponse, *service.ConstraintDenial, error)
}

// UserHandler exposes identity lookup endpoints for the kiosk login form.
type UserHandler struct {
	users identityOps
}

// NewUserHandler constructs a user handler.
func NewUserHandler(users identityOps) *UserHandler {
	return &UserHandler{users: users}
}

// Search godoc
// @Summary Autocomplete students by surname fragment
// @Tags Users
// @Produce json
// @Param q query string true "Surname fragment"
// @Param limit query int false "Result cap"
// @Success 200 {object} response.Envelope
// @Router /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	fragment := c.Query("q")
	if fragment == "" {
		// The legacy kiosk page sends ?surname=.
		fragment = c.Query("surname")
	}
	items, err := h.users.Search(c.Request.Context(), fragment, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Identify godoc
// @Summary Resolve a student from the login form
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.IdentifyRequest true "Identity payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope "Requested seat blocked by a group rule"
// @Failure 502 {object} response.Envelope "LMS login URL request failed"
// @Router /users/identify [post]
func (h *UserHandler) Identify(c *gin.Context) {
	var req dto.IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, denial, err := h.users.Identify(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if denial != nil {
		response.ErrorWithMeta(c,
			appErrors.Clone(appErrors.ErrConstraintViolation, denial.Message()),
			map[string]interface{}{"available_seats": denial.Available})
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
