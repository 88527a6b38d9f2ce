package authoring

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"

	"github.com/google/uuid"
)

type presentationRepo interface {
	PresentationByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error)
	UpdateResources(ctx context.Context, id uuid.UUID, resources []models.SlideResource) error
	UpdateLessonBreaks(ctx context.Context, id uuid.UUID, breaks []models.LessonBreak) error
}

// AuthoringService applies instructor edits to a stored presentation. Each
// call loads the record, rebuilds the scheduler or segmenter, applies one
// mutation and writes the result back.
type AuthoringService struct {
	log  logger.Log
	repo presentationRepo
	// mu serialises read-modify-write cycles within this process.
	mu sync.Mutex
}

func NewAuthoringService(log logger.Log, repo presentationRepo) *AuthoringService {
	return &AuthoringService{log: log, repo: repo}
}

func (s *AuthoringService) owned(ctx context.Context, presentationID, authorID uuid.UUID) (*models.Presentation, error) {
	p, err := s.repo.PresentationByID(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != authorID {
		return nil, app_errors.ErrNotPresentationAuthor
	}
	return p, nil
}

func (s *AuthoringService) AddResource(ctx context.Context, presentationID, authorID uuid.UUID, r models.SlideResource) (models.SlideResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.owned(ctx, presentationID, authorID)
	if err != nil {
		return models.SlideResource{}, err
	}
	scheduler, err := NewResourceScheduler(p.TotalSlides, p.Resources)
	if err != nil {
		return models.SlideResource{}, fmt.Errorf("stored resources: %w", err)
	}
	if strings.TrimSpace(r.ID) == "" {
		r.ID = uuid.NewString()
	}
	added, err := scheduler.Insert(r)
	if err != nil {
		return models.SlideResource{}, err
	}
	if err := s.repo.UpdateResources(ctx, presentationID, scheduler.All()); err != nil {
		return models.SlideResource{}, fmt.Errorf("save resources: %w", err)
	}
	s.log.Info("resource added",
		"presentation_id", presentationID,
		"resource_id", added.ID,
		"type", added.Type,
		"after_slide", added.ShowAfterSlide,
	)
	return added, nil
}

func (s *AuthoringService) RemoveResource(ctx context.Context, presentationID, authorID uuid.UUID, resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.owned(ctx, presentationID, authorID)
	if err != nil {
		return err
	}
	scheduler, err := NewResourceScheduler(p.TotalSlides, p.Resources)
	if err != nil {
		return fmt.Errorf("stored resources: %w", err)
	}
	if err := scheduler.Remove(resourceID); err != nil {
		return err
	}
	if err := s.repo.UpdateResources(ctx, presentationID, scheduler.All()); err != nil {
		return fmt.Errorf("save resources: %w", err)
	}
	return nil
}

// Resources lists a deck's resources; with slide set, only those active on
// that slide.
func (s *AuthoringService) Resources(ctx context.Context, presentationID uuid.UUID, slide *int) ([]models.SlideResource, error) {
	p, err := s.repo.PresentationByID(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	scheduler, err := NewResourceScheduler(p.TotalSlides, p.Resources)
	if err != nil {
		return nil, fmt.Errorf("stored resources: %w", err)
	}
	if slide != nil {
		return scheduler.Query(*slide), nil
	}
	return scheduler.All(), nil
}

func (s *AuthoringService) AddLessonBreak(ctx context.Context, presentationID, authorID uuid.UUID, afterSlide int) ([]models.LessonBreak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.owned(ctx, presentationID, authorID)
	if err != nil {
		return nil, err
	}
	segmenter, err := NewLessonSegmenter(p.TotalSlides, p.LessonBreaks)
	if err != nil {
		return nil, fmt.Errorf("stored lesson breaks: %w", err)
	}
	if _, err := segmenter.Insert(afterSlide); err != nil {
		return nil, err
	}
	breaks := segmenter.Breaks()
	if err := s.repo.UpdateLessonBreaks(ctx, presentationID, breaks); err != nil {
		return nil, fmt.Errorf("save lesson breaks: %w", err)
	}
	return breaks, nil
}

func (s *AuthoringService) RemoveLessonBreak(ctx context.Context, presentationID, authorID uuid.UUID, breakID string) ([]models.LessonBreak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.owned(ctx, presentationID, authorID)
	if err != nil {
		return nil, err
	}
	segmenter, err := NewLessonSegmenter(p.TotalSlides, p.LessonBreaks)
	if err != nil {
		return nil, fmt.Errorf("stored lesson breaks: %w", err)
	}
	if err := segmenter.Remove(breakID); err != nil {
		return nil, err
	}
	breaks := segmenter.Breaks()
	if err := s.repo.UpdateLessonBreaks(ctx, presentationID, breaks); err != nil {
		return nil, fmt.Errorf("save lesson breaks: %w", err)
	}
	return breaks, nil
}
