package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/internal/service"
	appErrors "github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/response"
)

type placementServiceMock struct {
	assignResp   *dto.AssignResponse
	assignDenial *service.ConstraintDenial
	assignErr    error
	removeResp   *dto.RemoveResponse
	removeErr    error
	suggestions  []dto.SuggestionItem
	lastSeat     int
	lastReq      dto.AssignRequest
}

func (m *placementServiceMock) Assign(_ context.Context, seat int, req dto.AssignRequest) (*dto.AssignResponse, *service.ConstraintDenial, error) {
	m.lastSeat = seat
	m.lastReq = req
	return m.assignResp, m.assignDenial, m.assignErr
}

func (m *placementServiceMock) Remove(_ context.Context, seat int, _ string) (*dto.RemoveResponse, error) {
	m.lastSeat = seat
	return m.removeResp, m.removeErr
}

func (m *placementServiceMock) Suggestions(_ context.Context, seat int) ([]dto.SuggestionItem, error) {
	m.lastSeat = seat
	return m.suggestions, nil
}

func placementRequest(t *testing.T, method, target string, body interface{}, params gin.Params) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return w, c
}

func TestPlacementHandlerAssignCreated(t *testing.T) {
	detail := models.PlacementDetail{ID: "p-1", WorkplaceID: "329-7", UserID: "u-1"}
	mockSvc := &placementServiceMock{assignResp: &dto.AssignResponse{Placement: detail}}
	h := NewPlacementHandler(mockSvc, nil, "329")

	w, c := placementRequest(t, http.MethodPost, "/classrooms/329/workplaces/7/assign",
		dto.AssignRequest{UserID: "u-1"},
		gin.Params{{Key: "id", Value: "329"}, {Key: "seat", Value: "7"}})

	h.Assign(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 7, mockSvc.lastSeat)
	assert.Equal(t, "u-1", mockSvc.lastReq.UserID)
}

func TestPlacementHandlerAssignDeniedCarriesAvailableSeats(t *testing.T) {
	mockSvc := &placementServiceMock{assignDenial: &service.ConstraintDenial{Seat: 7, Available: []int{1, 2, 3}}}
	h := NewPlacementHandler(mockSvc, nil, "329")

	w, c := placementRequest(t, http.MethodPost, "/classrooms/329/workplaces/7/assign",
		dto.AssignRequest{UserID: "u-1"},
		gin.Params{{Key: "id", Value: "329"}, {Key: "seat", Value: "7"}})

	h.Assign(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrConstraintViolation.Code, envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "доступні варіанти")
	assert.Contains(t, envelope.Meta, "available_seats")
}

func TestPlacementHandlerAssignUnknownRoom(t *testing.T) {
	mockSvc := &placementServiceMock{}
	h := NewPlacementHandler(mockSvc, nil, "329")

	w, c := placementRequest(t, http.MethodPost, "/classrooms/999/workplaces/7/assign",
		dto.AssignRequest{UserID: "u-1"},
		gin.Params{{Key: "id", Value: "999"}, {Key: "seat", Value: "7"}})

	h.Assign(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlacementHandlerAssignBadSeat(t *testing.T) {
	h := NewPlacementHandler(&placementServiceMock{}, nil, "329")

	w, c := placementRequest(t, http.MethodPost, "/classrooms/329/workplaces/zero/assign",
		dto.AssignRequest{UserID: "u-1"},
		gin.Params{{Key: "id", Value: "329"}, {Key: "seat", Value: "zero"}})

	h.Assign(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlacementHandlerRemove(t *testing.T) {
	mockSvc := &placementServiceMock{removeResp: &dto.RemoveResponse{
		RemovedPlacement: models.PlacementDetail{ID: "p-1"},
	}}
	h := NewPlacementHandler(mockSvc, nil, "329")

	w, c := placementRequest(t, http.MethodDelete, "/classrooms/329/workplaces/7", nil,
		gin.Params{{Key: "id", Value: "329"}, {Key: "seat", Value: "7"}})

	h.Remove(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, mockSvc.lastSeat)
}

func TestPlacementHandlerRemoveNotFound(t *testing.T) {
	mockSvc := &placementServiceMock{removeErr: appErrors.Clone(appErrors.ErrNotFound, "placement not found")}
	h := NewPlacementHandler(mockSvc, nil, "329")

	w, c := placementRequest(t, http.MethodDelete, "/classrooms/329/workplaces/7", nil,
		gin.Params{{Key: "id", Value: "329"}, {Key: "seat", Value: "7"}})

	h.Remove(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlacementHandlerSuggestions(t *testing.T) {
	mockSvc := &placementServiceMock{suggestions: []dto.SuggestionItem{
		{User: models.User{ID: "u-1"}, Count: 4},
	}}
	h := NewPlacementHandler(mockSvc, nil, "329")

	w, c := placementRequest(t, http.MethodGet, "/workplaces/7/suggestions", nil,
		gin.Params{{Key: "seat", Value: "7"}})

	h.Suggestions(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, mockSvc.lastSeat)
}
