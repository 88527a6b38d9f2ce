package authoring

import (
	"fmt"
	"sort"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"

	"github.com/google/uuid"
)

// LessonSegmenter splits a deck into lessons. Slides up to the first break
// form lesson 1; the k-th break in slide order starts lesson k+1.
type LessonSegmenter struct {
	totalSlides int
	breaks      []models.LessonBreak
	newID       func() string
}

func NewLessonSegmenter(totalSlides int, breaks []models.LessonBreak) (*LessonSegmenter, error) {
	s := &LessonSegmenter{totalSlides: totalSlides, newID: uuid.NewString}
	for _, b := range breaks {
		if err := s.validate(b.AfterSlide); err != nil {
			return nil, err
		}
		s.breaks = append(s.breaks, b)
	}
	s.renumber()
	return s, nil
}

func (s *LessonSegmenter) validate(afterSlide int) error {
	if afterSlide < 1 || afterSlide > s.totalSlides-1 {
		return fmt.Errorf("%w: break must come after a slide in [1, %d], got %d",
			app_errors.ErrInvalidLessonBreak, s.totalSlides-1, afterSlide)
	}
	for _, b := range s.breaks {
		if b.AfterSlide == afterSlide {
			return app_errors.ErrDuplicateLessonBreak
		}
	}
	return nil
}

// Insert adds a break after afterSlide and returns it with its final number.
// Every other break is renumbered.
func (s *LessonSegmenter) Insert(afterSlide int) (models.LessonBreak, error) {
	if err := s.validate(afterSlide); err != nil {
		return models.LessonBreak{}, err
	}
	b := models.LessonBreak{
		ID:           s.newID(),
		AfterSlide:   afterSlide,
		LessonNumber: s.countBefore(afterSlide) + 2,
	}
	s.breaks = append(s.breaks, b)
	s.renumber()
	for _, got := range s.breaks {
		if got.ID == b.ID {
			return got, nil
		}
	}
	return b, nil
}

func (s *LessonSegmenter) Remove(id string) error {
	for i, b := range s.breaks {
		if b.ID == id {
			s.breaks = append(s.breaks[:i], s.breaks[i+1:]...)
			s.renumber()
			return nil
		}
	}
	return app_errors.ErrLessonBreakNotFound
}

// Breaks returns the breaks sorted by AfterSlide.
func (s *LessonSegmenter) Breaks() []models.LessonBreak {
	out := make([]models.LessonBreak, len(s.breaks))
	copy(out, s.breaks)
	return out
}

// LessonAt returns the lesson number slide belongs to.
func (s *LessonSegmenter) LessonAt(slide int) int {
	return s.countBefore(slide) + 1
}

func (s *LessonSegmenter) countBefore(slide int) int {
	n := 0
	for _, b := range s.breaks {
		if b.AfterSlide < slide {
			n++
		}
	}
	return n
}

// renumber recomputes every lesson number from scratch.
func (s *LessonSegmenter) renumber() {
	sort.SliceStable(s.breaks, func(i, j int) bool {
		return s.breaks[i].AfterSlide < s.breaks[j].AfterSlide
	})
	for i := range s.breaks {
		s.breaks[i].LessonNumber = i + 2
	}
}
