package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"usertask-manager/internal/service"
)

type createUserRequest struct {
	FullName     string `json:"fullName" binding:"required,min=2,max=200"`
	EmailAddress string `json:"emailAddress" binding:"required,email,max=150"`
}

// Blank fields are left unchanged.
type updateUserRequest struct {
	FullName     string `json:"fullName" binding:"omitempty,min=2,max=200"`
	EmailAddress string `json:"emailAddress" binding:"omitempty,email,max=150"`
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, userNotFound(id))
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listUsers(c *gin.Context) {
	page, err := h.users.List(c.Request.Context(), pageQuery(c))
	if err != nil {
		h.respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), service.CreateUserInput{
		FullName:     req.FullName,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		h.respondServiceError(c, err, "")
		return
	}

	c.Header("Location", fmt.Sprintf("/api/user/%d", user.UserID))
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, service.UserPatch{
		FullName:     presentString(req.FullName),
		EmailAddress: presentString(req.EmailAddress),
	})
	if err != nil {
		h.respondServiceError(c, err, userNotFound(id))
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.users.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, userNotFound(id))
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, userNotFound(id), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted successfully"})
}

func userNotFound(id int64) string {
	return fmt.Sprintf("user with id %d not found", id)
}

func presentString(s string) service.Optional[string] {
	if s == "" {
		return service.Optional[string]{}
	}
	return service.Some(s)
}
