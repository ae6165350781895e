package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/services"
)

type RoleHandler struct {
	Roles *services.RoleService
	Log   *slog.Logger
}

func NewRoleHandler(roles *services.RoleService, log *slog.Logger) *RoleHandler {
	return &RoleHandler{Roles: roles, Log: log}
}

func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.Roles.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	role, err := h.Roles.GetRole(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.Roles.ListPermissions(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

// AssignRole is PUT /users/:id/role
func (h *RoleHandler) AssignRole(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Roles.AssignRole(c.Request.Context(), userID, req.RoleID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.Log.Info("Role assigned", "user_id", userID, "role", user.Role.Name)
	c.JSON(http.StatusOK, user)
}
