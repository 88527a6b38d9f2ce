package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
	"LiqLearns/internal/pptx"
	"LiqLearns/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxUploadBytes = 100 << 20
	mediaUploadWorkers    = 4
)

type parser interface {
	Parse(ctx context.Context, data []byte) (*pptx.Result, error)
}

type presentationRepo interface {
	CreatePresentation(ctx context.Context, p *models.Presentation) error
}

type mediaRepo interface {
	StoreMedia(ctx context.Context, ref models.ImageRef, data []byte, contentType string) error
}

type searchRepo interface {
	Index(ctx context.Context, p models.Presentation) error
}

type PresentationUploadService struct {
	log      logger.Log
	parser   parser
	repo     presentationRepo
	media    mediaRepo
	search   searchRepo
	maxBytes int64
}

func NewPresentationUploadService(log logger.Log, p parser, repo presentationRepo, media mediaRepo, search searchRepo, maxBytes int64) *PresentationUploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &PresentationUploadService{
		log:      log,
		parser:   p,
		repo:     repo,
		media:    media,
		search:   search,
		maxBytes: maxBytes,
	}
}

// UploadResult carries the stored record and the author-facing warning for
// slides that were replaced by placeholders.
type UploadResult struct {
	Presentation *models.Presentation `json:"presentation"`
	FailedSlides int                  `json:"failed_slides"`
	Warning      string               `json:"warning,omitempty"`
}

func (s *PresentationUploadService) MaxBytes() int64 {
	return s.maxBytes
}

// CheckFile rejects a file before any of it is read. size < 0 means unknown.
func (s *PresentationUploadService) CheckFile(filename string, size int64) error {
	if strings.ToLower(filepath.Ext(filename)) != ".pptx" {
		return app_errors.ErrUnsupportedExtension
	}
	if size > s.maxBytes {
		return fmt.Errorf("%w: limit is %d MB", app_errors.ErrOversizeInput, s.maxBytes>>20)
	}
	return nil
}

func (s *PresentationUploadService) Upload(
	ctx context.Context,
	authorID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
) (*UploadResult, error) {
	if err := s.CheckFile(filename, size); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(reader, s.maxBytes+1)); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(buf.Len()) > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d MB", app_errors.ErrOversizeInput, s.maxBytes>>20)
	}

	res, err := s.parser.Parse(ctx, buf.Bytes())
	if err != nil {
		s.log.Warn("presentation rejected", "file", filename, logger.Err(err))
		return nil, err
	}

	if err := s.storeMedia(ctx, res.Media); err != nil {
		s.log.ErrorErr("failed to store slide media", err)
		return nil, err
	}

	p := &models.Presentation{
		ID:           uuid.New(),
		AuthorID:     authorID,
		FileName:     filepath.Base(filename),
		TotalSlides:  res.Presentation.TotalSlides,
		UploadedAt:   time.Now().UTC(),
		Resources:    []models.SlideResource{},
		LessonBreaks: []models.LessonBreak{},
		Slides:       res.Presentation.Slides,
	}
	if err := s.repo.CreatePresentation(ctx, p); err != nil {
		s.log.ErrorErr("failed to save presentation", err)
		return nil, err
	}

	if err := s.search.Index(ctx, *p); err != nil {
		s.log.ErrorErr("error indexing presentation", err)
	}

	s.log.Info("presentation uploaded",
		"presentation_id", p.ID,
		"slides", p.TotalSlides,
		"media", len(res.Media),
		"failed_slides", len(res.Failures),
	)
	return &UploadResult{
		Presentation: p,
		FailedSlides: len(res.Failures),
		Warning:      res.FailureSummary(),
	}, nil
}

func (s *PresentationUploadService) storeMedia(ctx context.Context, media map[models.ImageRef]pptx.Media) error {
	refs := make([]models.ImageRef, 0, len(media))
	for ref := range media {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(mediaUploadWorkers)
	for _, ref := range refs {
		ref := ref
		m := media[ref]
		g.Go(func() error {
			if err := s.media.StoreMedia(ctx, ref, m.Data, m.ContentType); err != nil {
				return fmt.Errorf("store %s: %w", ref, err)
			}
			return nil
		})
	}
	return g.Wait()
}
