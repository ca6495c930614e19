package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"usertask-manager/internal/domain"
	"usertask-manager/internal/service"
)

type createTaskRequest struct {
	TaskDescription string `json:"taskDescription" binding:"required,min=5,max=500"`
}

type updateTaskRequest struct {
	TaskDescription string `json:"taskDescription" binding:"omitempty,min=5,max=500"`
	IsCompleted     *bool  `json:"isCompleted"`
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, taskNotFound(id))
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) listUserTasks(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	q := pageQuery(c)
	q.Status = domain.ParseTaskStatus(c.Query("status"))

	page, err := h.tasks.ListByUser(c.Request.Context(), userID, q)
	if err != nil {
		h.respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) createTask(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, service.CreateTaskInput{
		TaskDescription: req.TaskDescription,
	})
	if err != nil {
		h.respondServiceError(c, err, "")
		return
	}

	c.Header("Location", fmt.Sprintf("/api/task/%d", task.TaskID))
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) updateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch := service.TaskPatch{TaskDescription: presentString(req.TaskDescription)}
	if req.IsCompleted != nil {
		patch.IsCompleted = service.Some(*req.IsCompleted)
	}

	task, err := h.tasks.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.respondServiceError(c, err, taskNotFound(id))
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) toggleTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.ToggleCompletion(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, taskNotFound(id))
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.tasks.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, taskNotFound(id))
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, taskNotFound(id), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task deleted successfully"})
}

func taskNotFound(id int64) string {
	return fmt.Sprintf("task with id %d not found", id)
}
