package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/models"
	appErrors "github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/response"
)

type groupOps interface {
	Create(ctx context.Context, req dto.CreateGroupRequest) (*models.StudentGroup, error)
	Update(ctx context.Context, id string, req dto.UpdateGroupRequest) (*models.StudentGroup, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.StudentGroup, error)
	Get(ctx context.Context, id string) (*models.GroupDetail, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	SetFeature(ctx context.Context, groupID string, key models.FeatureKey, req dto.SetFeatureRequest) (*models.GroupFeature, error)
}

// GroupHandler exposes group management, guarded by the admin JWT.
type GroupHandler struct {
	groups groupOps
}

// NewGroupHandler constructs a group handler.
func NewGroupHandler(groups groupOps) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// List godoc
// @Summary List groups
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Get godoc
// @Summary Group detail with members and features
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Create godoc
// @Summary Create a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body dto.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "group name is required"))
		return
	}
	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Rename or re-describe a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.UpdateGroupRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "group name is required"))
		return
	}
	group, err := h.groups.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Delete godoc
// @Summary Delete a group
// @Tags Groups
// @Param id path string true "Group ID"
// @Success 204
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddMember godoc
// @Summary Attach a user to a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.AddMemberRequest true "Member payload"
// @Success 204
// @Router /groups/{id}/members [post]
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user_id is required"))
		return
	}
	if err := h.groups.AddMember(c.Request.Context(), c.Param("id"), req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveMember godoc
// @Summary Detach a user from a group
// @Tags Groups
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Success 204
// @Router /groups/{id}/members/{userId} [delete]
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	if err := h.groups.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetFeature godoc
// @Summary Enable or tune a seating feature on a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param key path string true "Feature key"
// @Param payload body dto.SetFeatureRequest true "Feature payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/features/{key} [put]
func (h *GroupHandler) SetFeature(c *gin.Context) {
	var req dto.SetFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	feature, err := h.groups.SetFeature(c.Request.Context(), c.Param("id"), models.FeatureKey(c.Param("key")), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feature, nil)
}
