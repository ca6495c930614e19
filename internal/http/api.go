package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"usertask-manager/internal/domain"
	"usertask-manager/internal/service"
)

const (
	serviceName    = "usertask-manager"
	serviceVersion = "1.0.0"
)

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	tasks  service.TaskService
	health HealthCheck
	logger logrus.FieldLogger
}

func NewHandler(users service.UserService, tasks service.TaskService, health HealthCheck, logger logrus.FieldLogger) *Handler {
	return &Handler{
		users:  users,
		tasks:  tasks,
		health: health,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	registerJSONFieldNames()

	router.Use(requestIDMiddleware(h.logger), observeMiddleware(), corsMiddleware())

	router.GET("/", h.banner)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", h.healthCheck)

		users := api.Group("/user")
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.POST("", h.createUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)

		tasks := api.Group("/task")
		tasks.GET("/user/:userId", h.listUserTasks)
		tasks.POST("/user/:userId", h.createTask)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.PATCH("/:id/complete", h.toggleTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

func (h *Handler) banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "running",
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) healthCheck(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			requestLogger(c, h.logger).WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "store unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// pageQuery reads page and pageSize, falling back to defaults for missing
// or non-numeric values, then clamps them.
func pageQuery(c *gin.Context) domain.PageQuery {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(domain.DefaultPageSize)))
	if err != nil {
		pageSize = domain.DefaultPageSize
	}

	q := domain.NewPageQuery(page, pageSize)
	q.Search = c.Query("search")
	return q
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}
