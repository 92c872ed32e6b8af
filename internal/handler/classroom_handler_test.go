package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/middleware"
	"github.com/rmn-lab/roster-api/internal/models"
)

type classroomServiceMock struct {
	snapshot  *dto.SnapshotResponse
	lastQuery dto.SnapshotQuery
	enabled   bool
	setCalled *bool
}

func (m *classroomServiceMock) Snapshot(_ context.Context, query dto.SnapshotQuery) (*dto.SnapshotResponse, error) {
	m.lastQuery = query
	return m.snapshot, nil
}

func (m *classroomServiceMock) Enabled(context.Context) (bool, error) { return m.enabled, nil }

func (m *classroomServiceMock) SetEnabled(_ context.Context, enabled bool) error {
	m.enabled = enabled
	if m.setCalled != nil {
		*m.setCalled = true
	}
	return nil
}

func (m *classroomServiceMock) Render(context.Context, dto.SnapshotQuery, string) ([]byte, string, string, error) {
	return []byte("Seat,Student\n"), "text/csv", "seating.csv", nil
}

func classroomGet(t *testing.T, target string, params gin.Params) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = params
	return w, c
}

func TestClassroomHandlerSnapshotParsesQuery(t *testing.T) {
	mockSvc := &classroomServiceMock{snapshot: &dto.SnapshotResponse{ClassroomID: "329"}}
	h := NewClassroomHandler(mockSvc, mockSvc, mockSvc, "329")

	w, c := classroomGet(t, "/classrooms/329?date=2026-03-16&lesson=3&singles=true",
		gin.Params{{Key: "id", Value: "329"}})

	h.Snapshot(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, mockSvc.lastQuery.Lesson)
	assert.True(t, mockSvc.lastQuery.HasLesson)
	assert.True(t, mockSvc.lastQuery.Singles)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local), mockSvc.lastQuery.Date)
}

func TestClassroomHandlerSnapshotBadDate(t *testing.T) {
	mockSvc := &classroomServiceMock{}
	h := NewClassroomHandler(mockSvc, mockSvc, mockSvc, "329")

	w, c := classroomGet(t, "/classrooms/329?date=16.03.2026", gin.Params{{Key: "id", Value: "329"}})

	h.Snapshot(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassroomHandlerStatusPlainText(t *testing.T) {
	mockSvc := &classroomServiceMock{enabled: true}
	h := NewClassroomHandler(mockSvc, mockSvc, mockSvc, "329")

	w, c := classroomGet(t, "/classrooms/329/screenshots/status", gin.Params{{Key: "id", Value: "329"}})
	h.ScreenshotsStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Body.String())

	mockSvc.enabled = false
	w, c = classroomGet(t, "/classrooms/329/screenshots/status", gin.Params{{Key: "id", Value: "329"}})
	h.ScreenshotsStatus(c)
	assert.Equal(t, "0", w.Body.String())
}

func TestClassroomHandlerToggleRequiresSession(t *testing.T) {
	called := false
	mockSvc := &classroomServiceMock{setCalled: &called}
	h := NewClassroomHandler(mockSvc, mockSvc, mockSvc, "329")

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPatch, "/classrooms/329/screenshots",
		strings.NewReader(`{"screenshots_enabled":false}`))
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "329"}}

	h.SetScreenshotsToggle(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestClassroomHandlerToggle(t *testing.T) {
	called := false
	mockSvc := &classroomServiceMock{enabled: true, setCalled: &called}
	h := NewClassroomHandler(mockSvc, mockSvc, mockSvc, "329")

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPatch, "/classrooms/329/screenshots",
		strings.NewReader(`{"screenshots_enabled":false}`))
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "329"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Role: "admin"})

	h.SetScreenshotsToggle(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
	assert.False(t, mockSvc.enabled)
}

func TestClassroomHandlerExportSetsDisposition(t *testing.T) {
	mockSvc := &classroomServiceMock{}
	h := NewClassroomHandler(mockSvc, mockSvc, mockSvc, "329")

	w, c := classroomGet(t, "/classrooms/329/export?format=csv", gin.Params{{Key: "id", Value: "329"}})
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seating.csv")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}

func TestClassroomHandlerUnknownRoom(t *testing.T) {
	mockSvc := &classroomServiceMock{}
	h := NewClassroomHandler(mockSvc, mockSvc, mockSvc, "329")

	w, c := classroomGet(t, "/classrooms/111", gin.Params{{Key: "id", Value: "111"}})
	h.Snapshot(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
