package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmn-lab/roster-api/internal/models"
)

type screenshotServiceMock struct {
	enabled    bool
	ingested   []byte
	lastSeat   int
	listResult []models.ScreenshotDetail
}

func (m *screenshotServiceMock) Enabled(context.Context) (bool, error) { return m.enabled, nil }

func (m *screenshotServiceMock) Ingest(_ context.Context, seat int, data []byte) (*models.Screenshot, error) {
	m.lastSeat = seat
	m.ingested = data
	return &models.Screenshot{WorkplaceNumber: seat, Filename: "20260316_101530.png"}, nil
}

func (m *screenshotServiceMock) List(_ context.Context, seat int) ([]models.ScreenshotDetail, error) {
	m.lastSeat = seat
	return m.listResult, nil
}

func (m *screenshotServiceMock) OpenFile(int, string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestScreenshotHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &screenshotServiceMock{enabled: true}
	h := NewScreenshotHandler(mockSvc, "329")

	body, contentType := multipartUpload(t, "screenshot", "capture.png", []byte("png-bytes"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/classrooms/329/workplaces/7/screenshot", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "329"}, {Key: "seat", Value: "7"}}

	h.Upload(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 7, mockSvc.lastSeat)
	assert.Equal(t, []byte("png-bytes"), mockSvc.ingested)
}

func TestScreenshotHandlerUploadDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &screenshotServiceMock{enabled: false}
	h := NewScreenshotHandler(mockSvc, "329")

	body, contentType := multipartUpload(t, "screenshot", "capture.png", []byte("png-bytes"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classrooms/329/workplaces/7/screenshot", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "329"}, {Key: "seat", Value: "7"}}

	h.Upload(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, mockSvc.ingested)
}

func TestScreenshotHandlerUploadMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &screenshotServiceMock{enabled: true}
	h := NewScreenshotHandler(mockSvc, "329")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classrooms/329/workplaces/7/screenshot", bytes.NewReader(nil))
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "329"}, {Key: "seat", Value: "7"}}

	h.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScreenshotHandlerServeRejectsTraversal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewScreenshotHandler(&screenshotServiceMock{}, "329")

	for _, filename := range []string{"../secret.png", "a/b.png", "shot.exe", "..%2Fetc", "shot.png.bak"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req, _ := http.NewRequest(http.MethodGet, "/classrooms/329/workplaces/7/screenshots/x", nil)
		c.Request = req
		c.Params = gin.Params{
			{Key: "id", Value: "329"},
			{Key: "seat", Value: "7"},
			{Key: "filename", Value: filename},
		}

		h.Serve(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, "filename=%q", filename)
	}
}

func TestScreenshotNamePattern(t *testing.T) {
	assert.True(t, screenshotNamePattern.MatchString("20260316_101530.png"))
	assert.True(t, screenshotNamePattern.MatchString("shot-1.jpg"))
	assert.False(t, screenshotNamePattern.MatchString("копія.png"))
	assert.False(t, screenshotNamePattern.MatchString(".png"))
}
