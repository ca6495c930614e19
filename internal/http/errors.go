package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"usertask-manager/internal/domain"
)

const (
	msgInvalidInput   = "invalid input data"
	msgInternalServer = "internal server error"
)

type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, message string, details map[string]string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}

// respondBindError turns a ShouldBindJSON failure into a 400 with one
// message per offending field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fieldMessage(fe)
		}
		respondError(c, http.StatusBadRequest, msgInvalidInput, details)
		return
	}
	respondError(c, http.StatusBadRequest, msgInvalidInput, map[string]string{"body": "malformed JSON body"})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// respondServiceError maps domain errors to status codes. notFound is the
// message used for a not-found error.
func (h *Handler) respondServiceError(c *gin.Context, err error, notFound string) {
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, notFound, nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		requestLogger(c, h.logger).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("unhandled error")
		respondError(c, http.StatusInternalServerError, msgInternalServer, nil)
	}
}

var registerTagNames sync.Once

// registerJSONFieldNames makes validation errors report JSON field names.
func registerJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
