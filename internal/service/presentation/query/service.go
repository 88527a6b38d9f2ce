package query

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
	"LiqLearns/internal/render"
	"LiqLearns/internal/service/presentation/authoring"
	"LiqLearns/pkg/logger"

	"github.com/google/uuid"
)

const defaultSearchSize = 10

type presentationRepo interface {
	PresentationByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error)
	PresentationsByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.PresentationPreview, error)
}

type searchRepo interface {
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

type mediaRepo interface {
	MediaURL(ctx context.Context, ref models.ImageRef) (string, error)
	Media(ctx context.Context, ref models.ImageRef) ([]byte, string, error)
}

type progressRepo interface {
	Progress(ctx context.Context, userID, presentationID uuid.UUID) (models.PresentationProgress, error)
}

type PresentationQueryService struct {
	log          logger.Log
	repo         presentationRepo
	search       searchRepo
	media        mediaRepo
	progressRepo progressRepo
}

func NewPresentationQueryService(log logger.Log, r presentationRepo, s searchRepo, m mediaRepo, p progressRepo) *PresentationQueryService {
	return &PresentationQueryService{
		log:          log,
		repo:         r,
		search:       s,
		media:        m,
		progressRepo: p,
	}
}

func (s *PresentationQueryService) PresentationByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error) {
	return s.repo.PresentationByID(ctx, id)
}

func (s *PresentationQueryService) MyPresentations(ctx context.Context, authorID uuid.UUID) ([]models.PresentationPreview, error) {
	previews, err := s.repo.PresentationsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if previews == nil {
		previews = []models.PresentationPreview{}
	}
	return previews, nil
}

func (s *PresentationQueryService) Search(ctx context.Context, query string, size int) ([]models.PresentationPreview, error) {
	if size <= 0 {
		size = defaultSearchSize
	}
	ids, err := s.search.Search(ctx, query, size)
	if err != nil {
		return nil, fmt.Errorf("search presentations: %w", err)
	}

	previews := make([]models.PresentationPreview, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.PresentationByID(ctx, id)
		if err != nil {
			s.log.ErrorErr("search: failed to load presentation by id", err, "presentation_id", id)
			continue
		}
		previews = append(previews, models.PresentationPreview{
			ID:          p.ID,
			FileName:    p.FileName,
			TotalSlides: p.TotalSlides,
			UploadedAt:  p.UploadedAt,
		})
	}
	return previews, nil
}

// RenderedSlide is a render plan plus download URLs for every image it uses.
type RenderedSlide struct {
	Slide  models.ParsedSlide         `json:"slide"`
	Plan   render.Plan                `json:"plan"`
	Media  map[models.ImageRef]string `json:"media"`
	Lesson int                        `json:"lesson"`
}

func (s *PresentationQueryService) RenderSlide(ctx context.Context, id uuid.UUID, index int) (*RenderedSlide, error) {
	p, err := s.repo.PresentationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slide, ok := p.Slide(index)
	if !ok {
		return nil, app_errors.ErrSlideNotFound
	}

	out := &RenderedSlide{
		Slide:  slide,
		Plan:   render.Select(slide),
		Media:  make(map[models.ImageRef]string),
		Lesson: 1,
	}
	if segmenter, err := authoring.NewLessonSegmenter(p.TotalSlides, p.LessonBreaks); err == nil {
		out.Lesson = segmenter.LessonAt(index)
	}
	for _, ref := range slideMedia(slide) {
		if _, seen := out.Media[ref]; seen {
			continue
		}
		url, err := s.media.MediaURL(ctx, ref)
		if err != nil {
			s.log.ErrorErr("RenderSlide: failed to get media URL", err, "ref", ref)
			continue
		}
		out.Media[ref] = url
	}
	return out, nil
}

func (s *PresentationQueryService) Progress(ctx context.Context, userID, presentationID uuid.UUID) (models.PresentationProgress, error) {
	p, err := s.repo.PresentationByID(ctx, presentationID)
	if err != nil {
		return models.PresentationProgress{}, err
	}
	progress, err := s.progressRepo.Progress(ctx, userID, presentationID)
	if err != nil {
		return models.PresentationProgress{}, err
	}
	progress.UserID = userID
	progress.PresentationID = presentationID
	if !progress.Completed && p.TotalSlides > 0 && len(progress.SlidesViewed) >= p.TotalSlides {
		progress.Completed = true
	}
	return progress, nil
}

// Media streams a stored slide image. Only content-addressed media refs are
// served.
func (s *PresentationQueryService) Media(ctx context.Context, ref models.ImageRef) ([]byte, string, error) {
	if !validMediaRef(ref) {
		return nil, "", app_errors.ErrMediaNotFound
	}
	data, contentType, err := s.media.Media(ctx, ref)
	if err != nil {
		if errors.Is(err, app_errors.ErrMediaNotFound) {
			return nil, "", err
		}
		s.log.ErrorErr("Media: failed to read media", err, "ref", ref)
		return nil, "", fmt.Errorf("read media %s: %w", ref, err)
	}
	return data, contentType, nil
}

func validMediaRef(ref models.ImageRef) bool {
	key, ok := strings.CutPrefix(string(ref), "media/")
	if !ok || key == "" || strings.ContainsAny(key, "/\\") {
		return false
	}
	hash, _, _ := strings.Cut(key, ".")
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func slideMedia(slide models.ParsedSlide) []models.ImageRef {
	refs := make([]models.ImageRef, 0, len(slide.Images)+1)
	if slide.BackgroundImage != "" {
		refs = append(refs, slide.BackgroundImage)
	}
	refs = append(refs, slide.Images...)
	for _, sh := range slide.Shapes {
		if sh.ImageSrc != "" {
			refs = append(refs, sh.ImageSrc)
		}
	}
	return refs
}
