package presentation

import (
	"context"
	"net/http"
	"strconv"

	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthoringService interface {
	AddResource(ctx context.Context, presentationID, authorID uuid.UUID, r models.SlideResource) (models.SlideResource, error)
	RemoveResource(ctx context.Context, presentationID, authorID uuid.UUID, resourceID string) error
	Resources(ctx context.Context, presentationID uuid.UUID, slide *int) ([]models.SlideResource, error)
	AddLessonBreak(ctx context.Context, presentationID, authorID uuid.UUID, afterSlide int) ([]models.LessonBreak, error)
	RemoveLessonBreak(ctx context.Context, presentationID, authorID uuid.UUID, breakID string) ([]models.LessonBreak, error)
}

type AuthoringHandler struct {
	log     logger.Log
	service AuthoringService
}

func NewAuthoringHandler(l logger.Log, s AuthoringService) *AuthoringHandler {
	return &AuthoringHandler{
		log:     l,
		service: s,
	}
}

func (h *AuthoringHandler) Resources(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	var slide *int
	if s := c.Query("slide"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slide must be an integer"})
			return
		}
		slide = &v
	}

	resources, err := h.service.Resources(c.Request.Context(), id, slide)
	if err != nil {
		writeError(c, h.log, "Resources", err)
		return
	}
	if resources == nil {
		resources = []models.SlideResource{}
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

func (h *AuthoringHandler) AddResource(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	authorID, ok := clientID(c)
	if !ok {
		return
	}
	var input models.SlideResource
	if err := c.ShouldBindJSON(&input); err != nil {
		if StatusFor(err) == http.StatusUnprocessableEntity {
			writeError(c, h.log, "AddResource", err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := h.service.AddResource(c.Request.Context(), id, authorID, input)
	if err != nil {
		writeError(c, h.log, "AddResource", err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (h *AuthoringHandler) DeleteResource(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	authorID, ok := clientID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveResource(c.Request.Context(), id, authorID, c.Param("resource_id")); err != nil {
		writeError(c, h.log, "DeleteResource", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type lessonBreakRequest struct {
	AfterSlide int `json:"after_slide" binding:"required"`
}

func (h *AuthoringHandler) AddLessonBreak(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	authorID, ok := clientID(c)
	if !ok {
		return
	}
	var input lessonBreakRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	breaks, err := h.service.AddLessonBreak(c.Request.Context(), id, authorID, input.AfterSlide)
	if err != nil {
		writeError(c, h.log, "AddLessonBreak", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lesson_breaks": breaks})
}

func (h *AuthoringHandler) DeleteLessonBreak(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	authorID, ok := clientID(c)
	if !ok {
		return
	}
	breaks, err := h.service.RemoveLessonBreak(c.Request.Context(), id, authorID, c.Param("break_id"))
	if err != nil {
		writeError(c, h.log, "DeleteLessonBreak", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson_breaks": breaks})
}
