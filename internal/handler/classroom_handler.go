package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rmn-lab/roster-api/internal/dto"
	appErrors "github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/response"
)

type snapshotService interface {
	Snapshot(ctx context.Context, query dto.SnapshotQuery) (*dto.SnapshotResponse, error)
}

type captureSwitchService interface {
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
}

type exportRenderer interface {
	Render(ctx context.Context, query dto.SnapshotQuery, format string) ([]byte, string, string, error)
}

// ClassroomHandler exposes the room snapshot, capture toggle and export
// endpoints.
type ClassroomHandler struct {
	classrooms  snapshotService
	screenshots captureSwitchService
	exports     exportRenderer
	classroomID string
}

// NewClassroomHandler constructs a classroom handler.
func NewClassroomHandler(classrooms snapshotService, screenshots captureSwitchService, exports exportRenderer, classroomID string) *ClassroomHandler {
	return &ClassroomHandler{
		classrooms:  classrooms,
		screenshots: screenshots,
		exports:     exports,
		classroomID: classroomID,
	}
}

func (h *ClassroomHandler) checkRoom(c *gin.Context) bool {
	if c.Param("id") != h.classroomID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown classroom"))
		return false
	}
	return true
}

func parseSnapshotQuery(c *gin.Context) (dto.SnapshotQuery, error) {
	var query dto.SnapshotQuery
	if raw := c.Query("date"); raw != "" {
		date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		query.Date = date
	}
	if raw := c.Query("lesson"); raw != "" {
		lesson, err := strconv.Atoi(raw)
		if err != nil || lesson < 0 {
			return query, appErrors.Clone(appErrors.ErrValidation, "lesson must be a non-negative number")
		}
		query.Lesson = lesson
		query.HasLesson = true
	}
	if raw := c.Query("singles"); raw != "" {
		// The board page sends on/off, scripts send true/false.
		switch raw {
		case "on":
			query.Singles = true
		case "off":
			query.Singles = false
		default:
			singles, err := strconv.ParseBool(raw)
			if err != nil {
				return query, appErrors.Clone(appErrors.ErrValidation, "singles must be boolean")
			}
			query.Singles = singles
		}
	}
	return query, nil
}

// Snapshot godoc
// @Summary Room state for a date and lesson window
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param lesson query int false "Lesson number"
// @Param singles query bool false "Single lesson instead of the double period"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Snapshot(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	query, err := parseSnapshotQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	snapshot, err := h.classrooms.Snapshot(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// ScreenshotsStatus godoc
// @Summary Capture switch as plain text for kiosk agents
// @Tags Screenshots
// @Produce plain
// @Param id path string true "Classroom ID"
// @Success 200 {string} string "1 or 0"
// @Router /classrooms/{id}/screenshots/status [get]
func (h *ClassroomHandler) ScreenshotsStatus(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	enabled, err := h.screenshots.Enabled(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	body := "0"
	if enabled {
		body = "1"
	}
	c.String(http.StatusOK, body)
}

// GetScreenshotsToggle godoc
// @Summary Capture switch state
// @Tags Screenshots
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/screenshots [get]
func (h *ClassroomHandler) GetScreenshotsToggle(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	enabled, err := h.screenshots.Enabled(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ScreenshotsStatusResponse{
		ClassroomID:        h.classroomID,
		ScreenshotsEnabled: enabled,
	}, nil)
}

// SetScreenshotsToggle godoc
// @Summary Flip the capture switch
// @Tags Screenshots
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param payload body dto.ScreenshotsToggleRequest true "Toggle payload"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/screenshots [patch]
func (h *ClassroomHandler) SetScreenshotsToggle(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ScreenshotsToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ScreenshotsEnabled == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "screenshots_enabled is required"))
		return
	}
	if err := h.screenshots.SetEnabled(c.Request.Context(), *req.ScreenshotsEnabled); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ScreenshotsStatusResponse{
		ClassroomID:        h.classroomID,
		ScreenshotsEnabled: *req.ScreenshotsEnabled,
	}, nil)
}

// Export godoc
// @Summary Seating chart download
// @Tags Classrooms
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Classroom ID"
// @Param format query string false "csv or pdf"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param lesson query int false "Lesson number"
// @Success 200 {file} binary
// @Router /classrooms/{id}/export [get]
func (h *ClassroomHandler) Export(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	query, err := parseSnapshotQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	body, contentType, filename, err := h.exports.Render(c.Request.Context(), query, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}
