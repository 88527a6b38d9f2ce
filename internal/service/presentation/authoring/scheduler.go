package authoring

import (
	"fmt"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
)

// ResourceScheduler answers "which resources are active on slide s". Every
// window is one slide wide, so resources are indexed by ShowAfterSlide.
type ResourceScheduler struct {
	totalSlides int
	order       []string
	byID        map[string]models.SlideResource
	byAnchor    map[int][]string
}

// NewResourceScheduler rebuilds a scheduler from persisted resources,
// rejecting the set if any of them is invalid.
func NewResourceScheduler(totalSlides int, resources []models.SlideResource) (*ResourceScheduler, error) {
	s := &ResourceScheduler{
		totalSlides: totalSlides,
		byID:        make(map[string]models.SlideResource, len(resources)),
		byAnchor:    make(map[int][]string),
	}
	for _, r := range resources {
		if _, err := s.Insert(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Insert validates r and appends it. On error the scheduler is unchanged.
func (s *ResourceScheduler) Insert(r models.SlideResource) (models.SlideResource, error) {
	if r.ShowBeforeSlide == 0 {
		r.ShowBeforeSlide = r.ShowAfterSlide + 1
	}
	if err := r.Validate(); err != nil {
		return models.SlideResource{}, err
	}
	if r.ShowAfterSlide > s.totalSlides {
		return models.SlideResource{}, fmt.Errorf("%w: show_after_slide %d is beyond slide %d",
			app_errors.ErrInvalidResource, r.ShowAfterSlide, s.totalSlides)
	}
	if _, ok := s.byID[r.ID]; ok {
		return models.SlideResource{}, app_errors.ErrDuplicateResource
	}

	s.byID[r.ID] = r
	s.order = append(s.order, r.ID)
	s.byAnchor[r.ShowAfterSlide] = append(s.byAnchor[r.ShowAfterSlide], r.ID)
	return r, nil
}

func (s *ResourceScheduler) Remove(id string) error {
	r, ok := s.byID[id]
	if !ok {
		return app_errors.ErrResourceNotFound
	}
	delete(s.byID, id)
	s.order = without(s.order, id)
	if ids := without(s.byAnchor[r.ShowAfterSlide], id); len(ids) > 0 {
		s.byAnchor[r.ShowAfterSlide] = ids
	} else {
		delete(s.byAnchor, r.ShowAfterSlide)
	}
	return nil
}

// Query returns the resources active on slide, in insertion order.
func (s *ResourceScheduler) Query(slide int) []models.SlideResource {
	ids := s.byAnchor[slide]
	out := make([]models.SlideResource, 0, len(ids))
	for _, id := range ids {
		if r := s.byID[id]; r.Active(slide) {
			out = append(out, r)
		}
	}
	return out
}

func (s *ResourceScheduler) Get(id string) (models.SlideResource, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// All returns every resource in insertion order.
func (s *ResourceScheduler) All() []models.SlideResource {
	out := make([]models.SlideResource, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
