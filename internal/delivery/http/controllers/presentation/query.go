package presentation

import (
	"context"
	"net/http"
	"strconv"

	"LiqLearns/internal/models"
	"LiqLearns/internal/service/presentation/query"
	"LiqLearns/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QueryService interface {
	PresentationByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error)
	MyPresentations(ctx context.Context, authorID uuid.UUID) ([]models.PresentationPreview, error)
	Search(ctx context.Context, query string, size int) ([]models.PresentationPreview, error)
	RenderSlide(ctx context.Context, id uuid.UUID, index int) (*query.RenderedSlide, error)
	Media(ctx context.Context, ref models.ImageRef) ([]byte, string, error)
	Progress(ctx context.Context, userID, presentationID uuid.UUID) (models.PresentationProgress, error)
}

type QueryHandler struct {
	log     logger.Log
	service QueryService
}

func NewQueryHandler(log logger.Log, s QueryService) *QueryHandler {
	return &QueryHandler{
		log:     log,
		service: s,
	}
}

func (h *QueryHandler) PresentationByID(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	p, err := h.service.PresentationByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "PresentationByID", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *QueryHandler) MyPresentations(c *gin.Context) {
	authorID, ok := clientID(c)
	if !ok {
		return
	}
	previews, err := h.service.MyPresentations(c.Request.Context(), authorID)
	if err != nil {
		writeError(c, h.log, "MyPresentations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presentations": previews})
}

func (h *QueryHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	size := 0
	if s := c.Query("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a positive integer"})
			return
		}
		size = v
	}

	previews, err := h.service.Search(c.Request.Context(), q, size)
	if err != nil {
		h.log.ErrorErr("Search failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search presentations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"presentations": previews})
}

func (h *QueryHandler) RenderSlide(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	out, err := h.service.RenderSlide(c.Request.Context(), id, index)
	if err != nil {
		writeError(c, h.log, "RenderSlide", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *QueryHandler) Media(c *gin.Context) {
	ref := models.ImageRef("media/" + c.Param("key"))
	data, contentType, err := h.service.Media(c.Request.Context(), ref)
	if err != nil {
		writeError(c, h.log, "Media", err)
		return
	}
	// Refs are content addressed, so the bytes behind a key never change.
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, contentType, data)
}

func (h *QueryHandler) Progress(c *gin.Context) {
	id, ok := presentationID(c)
	if !ok {
		return
	}
	userID, ok := clientID(c)
	if !ok {
		return
	}
	progress, err := h.service.Progress(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.log, "Progress", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
