package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/models"
	appErrors "github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/response"
)

// maxScreenshotUpload caps upload size at 10 MiB; kiosk captures are far
// below that.
const maxScreenshotUpload = 10 << 20

type screenshotOps interface {
	Enabled(ctx context.Context) (bool, error)
	Ingest(ctx context.Context, seat int, data []byte) (*models.Screenshot, error)
	List(ctx context.Context, seat int) ([]models.ScreenshotDetail, error)
	OpenFile(seat int, filename string) (*os.File, error)
}

// ScreenshotHandler exposes capture upload and history endpoints.
type ScreenshotHandler struct {
	screenshots screenshotOps
	classroomID string
}

// NewScreenshotHandler constructs a screenshot handler.
func NewScreenshotHandler(screenshots screenshotOps, classroomID string) *ScreenshotHandler {
	return &ScreenshotHandler{screenshots: screenshots, classroomID: classroomID}
}

func (h *ScreenshotHandler) checkRoom(c *gin.Context) bool {
	if c.Param("id") != h.classroomID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown classroom"))
		return false
	}
	return true
}

// Upload godoc
// @Summary Accept a capture from a kiosk agent
// @Tags Screenshots
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Classroom ID"
// @Param seat path int true "Seat number"
// @Param screenshot formData file true "PNG image"
// @Success 201 {object} response.Envelope
// @Router /classrooms/{id}/workplaces/{seat}/screenshot [post]
func (h *ScreenshotHandler) Upload(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	seat, err := seatParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	enabled, err := h.screenshots.Enabled(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if !enabled {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "screenshots are disabled for this classroom"))
		return
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "screenshot file is required"))
		return
	}
	if fileHeader.Size > maxScreenshotUpload {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "screenshot is too large"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.WithCause(appErrors.ErrStorageFailure, err))
		return
	}
	defer file.Close() //nolint:errcheck
	data, err := io.ReadAll(io.LimitReader(file, maxScreenshotUpload))
	if err != nil {
		response.Error(c, appErrors.WithCause(appErrors.ErrStorageFailure, err))
		return
	}

	shot, err := h.screenshots.Ingest(c.Request.Context(), seat, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.UploadScreenshotResponse{
		WorkplaceDir: strconv.Itoa(seat),
		Filename:     shot.Filename,
	})
}

// List godoc
// @Summary Capture history for a seat
// @Tags Screenshots
// @Produce json
// @Param id path string true "Classroom ID"
// @Param seat path int true "Seat number"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/workplaces/{seat}/screenshots [get]
func (h *ScreenshotHandler) List(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	seat, err := seatParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.screenshots.List(c.Request.Context(), seat)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Serve godoc
// @Summary Stream one stored capture
// @Tags Screenshots
// @Produce png
// @Param id path string true "Classroom ID"
// @Param seat path int true "Seat number"
// @Param filename path string true "Capture filename"
// @Success 200 {file} binary
// @Router /classrooms/{id}/workplaces/{seat}/screenshots/{filename} [get]
func (h *ScreenshotHandler) Serve(c *gin.Context) {
	if !h.checkRoom(c) {
		return
	}
	seat, err := seatParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := c.Param("filename")
	if !screenshotNamePattern.MatchString(filename) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid screenshot filename"))
		return
	}
	file, err := h.screenshots.OpenFile(seat, filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "private, max-age=60")
	if _, err := io.Copy(c.Writer, file); err != nil {
		// The response is already partially written; just log via gin.
		_ = c.Error(err)
	}
}
