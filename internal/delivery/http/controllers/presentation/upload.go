package presentation

import (
	"context"
	"errors"
	"io"
	"net/http"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/service/presentation/upload"
	"LiqLearns/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

type UploadService interface {
	MaxBytes() int64
	CheckFile(filename string, size int64) error
	Upload(ctx context.Context, authorID uuid.UUID, filename string, reader io.Reader, size int64) (*upload.UploadResult, error)
}

type UploadHandler struct {
	log     logger.Log
	service UploadService
}

func NewUploadHandler(l logger.Log, s UploadService) *UploadHandler {
	return &UploadHandler{
		log:     l,
		service: s,
	}
}

func (h *UploadHandler) UploadPresentation(c *gin.Context) {
	authorID, ok := clientID(c)
	if !ok {
		return
	}
	if c.Request.ContentLength > h.service.MaxBytes()+multipartOverhead {
		writeError(c, h.log, "upload", app_errors.ErrOversizeInput)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, h.log, "upload", app_errors.ErrOversizeInput)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if err := h.service.CheckFile(fileHeader.Filename, fileHeader.Size); err != nil {
		writeError(c, h.log, "upload", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	res, err := h.service.Upload(c.Request.Context(), authorID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		writeError(c, h.log, "upload", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
