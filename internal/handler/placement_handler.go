package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/service"
	appErrors "github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/response"
)

type placementOps interface {
	Assign(ctx context.Context, seat int, req dto.AssignRequest) (*dto.AssignResponse, *service.ConstraintDenial, error)
	Remove(ctx context.Context, seat int, placementID string) (*dto.RemoveResponse, error)
	Suggestions(ctx context.Context, seat int) ([]dto.SuggestionItem, error)
}

// PlacementHandler exposes seating operations.
type PlacementHandler struct {
	placements  placementOps
	metrics     *service.MetricsService
	classroomID string
}

// NewPlacementHandler constructs a placement handler.
func NewPlacementHandler(placements placementOps, metrics *service.MetricsService, classroomID string) *PlacementHandler {
	return &PlacementHandler{placements: placements, metrics: metrics, classroomID: classroomID}
}

func (h *PlacementHandler) checkRoom(c *gin.Context) bool {
	if c.Param("id") != h.classroomID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown classroom"))
		return false
	}
	return true
}

func (h *PlacementHandler) countPlacement(outcome string) {
	if h.metrics != nil {
		h.metrics.CountPlacement(outcome)
	}
}

// Assign godoc
// @Summary Seat a user at a workplace
// @Tags Placements
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param seat path int true "Seat number"
// @Param payload body dto.AssignRequest true "User reference"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope "Seat blocked by a group rule"
// @Router /classrooms/{id}/workplaces/{seat}/assign [post]
func (h *PlacementHandler) Assign(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	seat, err := seatParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	resp, denial, err := h.placements.Assign(c.Request.Context(), seat, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if denial != nil {
		h.countPlacement("denied")
		response.ErrorWithMeta(c,
			appErrors.Clone(appErrors.ErrConstraintViolation, denial.Message()),
			map[string]interface{}{"available_seats": denial.Available})
		return
	}
	h.countPlacement("placed")
	response.Created(c, resp)
}

// Remove godoc
// @Summary Delete a placement, the latest one with no id given
// @Tags Placements
// @Produce json
// @Param id path string true "Classroom ID"
// @Param seat path int true "Seat number"
// @Param placement_id query string false "Placement to delete"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/workplaces/{seat} [delete]
func (h *PlacementHandler) Remove(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	seat, err := seatParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.placements.Remove(c.Request.Context(), seat, c.Query("placement_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.countPlacement("removed")
	response.JSON(c, http.StatusOK, resp, nil)
}

// Suggestions godoc
// @Summary Frequent occupants of a seat for the current lesson slot
// @Tags Placements
// @Produce json
// @Param seat path int true "Seat number"
// @Success 200 {object} response.Envelope
// @Router /workplaces/{seat}/suggestions [get]
func (h *PlacementHandler) Suggestions(c *gin.Context) {
	seat, err := seatParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.placements.Suggestions(c.Request.Context(), seat)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
