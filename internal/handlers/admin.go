package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sigmadevelopers/portfolio/internal/models"
)

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit := 50
	offset := 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}

	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h HandlerSet) AdminGetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type updateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

func (h HandlerSet) AdminUpdateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.Role != models.UserRoleMember && req.Role != models.UserRoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown role"})
		return
	}

	targetID := c.Param("id")
	if actor, ok := currentUser(c); ok && actor.ID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot change own role"})
		return
	}

	if err := h.users.UpdateRole(c.Request.Context(), targetID, req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

func (h HandlerSet) AdminDeleteUser(c *gin.Context) {
	targetID := c.Param("id")
	if actor, ok := currentUser(c); ok && actor.ID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot delete own account here"})
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
