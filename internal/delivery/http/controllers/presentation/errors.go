package presentation

import (
	"errors"
	"net/http"
	"strconv"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/delivery/http/controllers/middleware"
	"LiqLearns/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, app_errors.ErrPresentationNotFound),
		errors.Is(err, app_errors.ErrSlideNotFound),
		errors.Is(err, app_errors.ErrResourceNotFound),
		errors.Is(err, app_errors.ErrLessonBreakNotFound),
		errors.Is(err, app_errors.ErrMediaNotFound),
		errors.Is(err, app_errors.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, app_errors.ErrNotPresentationAuthor):
		return http.StatusForbidden
	case errors.Is(err, app_errors.ErrOversizeInput):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, app_errors.ErrUnsupportedExtension):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, app_errors.ErrDuplicateResource),
		errors.Is(err, app_errors.ErrDuplicateLessonBreak),
		errors.Is(err, app_errors.ErrResourceActive),
		errors.Is(err, app_errors.ErrEngineNotReady),
		errors.Is(err, app_errors.ErrEngineClosed),
		errors.Is(err, app_errors.ErrNoActiveResource),
		errors.Is(err, app_errors.ErrNotQuiz):
		return http.StatusConflict
	case errors.Is(err, app_errors.ErrInvalidResource),
		errors.Is(err, app_errors.ErrInvalidLessonBreak),
		errors.Is(err, app_errors.ErrQuizIncomplete),
		errors.Is(err, app_errors.ErrInvalidArchive),
		errors.Is(err, app_errors.ErrMissingManifest),
		errors.Is(err, app_errors.ErrMalformedXML),
		errors.Is(err, app_errors.ErrUnsupportedPart):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, log logger.Log, op string, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.ErrorErr(op+" failed", err)
		c.JSON(code, gin.H{"error": op + " failed"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func presentationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("presentation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid presentation_id"})
		return uuid.Nil, false
	}
	return id, true
}

func clientID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}
