package models

import (
	"sort"

	"github.com/google/uuid"
)

// PresentationProgress is one learner's persisted position in one deck.
type PresentationProgress struct {
	UserID             uuid.UUID `json:"user_id"`
	PresentationID     uuid.UUID `json:"presentation_id"`
	CurrentSlide       int       `json:"current_slide"`
	SlidesViewed       []int     `json:"slides_viewed"`
	ResourcesCompleted []string  `json:"resources_completed"`
	Completed          bool      `json:"completed"`
	TimeSpentSeconds   int       `json:"time_spent_seconds"`
}

// ProgressUpdate is a partial write. Nil pointers and empty slices leave the
// stored value untouched; set members are unioned and TimeSpent is added.
type ProgressUpdate struct {
	CurrentSlide       *int     `json:"current_slide,omitempty"`
	SlidesViewed       []int    `json:"slides_viewed,omitempty"`
	TimeSpent          int      `json:"time_spent,omitempty"`
	ResourcesCompleted []string `json:"resources_completed,omitempty"`
	Completed          *bool    `json:"completed,omitempty"`
}

func (u ProgressUpdate) Empty() bool {
	return u.CurrentSlide == nil && len(u.SlidesViewed) == 0 && u.TimeSpent == 0 &&
		len(u.ResourcesCompleted) == 0 && u.Completed == nil
}

// Merge folds a later update into u. Scalars take the later value, sets are
// unioned and time deltas are summed.
func (u ProgressUpdate) Merge(later ProgressUpdate) ProgressUpdate {
	out := ProgressUpdate{
		CurrentSlide:       u.CurrentSlide,
		SlidesViewed:       UnionInts(u.SlidesViewed, later.SlidesViewed),
		TimeSpent:          u.TimeSpent + later.TimeSpent,
		ResourcesCompleted: UnionStrings(u.ResourcesCompleted, later.ResourcesCompleted),
		Completed:          u.Completed,
	}
	if later.CurrentSlide != nil {
		out.CurrentSlide = later.CurrentSlide
	}
	if later.Completed != nil {
		out.Completed = later.Completed
	}
	return out
}

// Apply returns p with the update applied.
func (p PresentationProgress) Apply(u ProgressUpdate) PresentationProgress {
	if u.CurrentSlide != nil {
		p.CurrentSlide = *u.CurrentSlide
	}
	p.SlidesViewed = UnionInts(p.SlidesViewed, u.SlidesViewed)
	p.ResourcesCompleted = UnionStrings(p.ResourcesCompleted, u.ResourcesCompleted)
	p.TimeSpentSeconds += u.TimeSpent
	if u.Completed != nil {
		p.Completed = *u.Completed
	}
	return p
}

// UnionInts returns the sorted set union of a and b.
func UnionInts(a, b []int) []int {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, list := range [][]int{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// UnionStrings returns the union of a and b, keeping first-seen order.
func UnionStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
