package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"LiqLearns/internal/app_errors"
)

type ResourceType string

const (
	ResourceTypeVideo     ResourceType = "video"
	ResourceTypeAudio     ResourceType = "audio"
	ResourceTypeQuiz      ResourceType = "quiz"
	ResourceTypeFlashcard ResourceType = "flashcard"
)

const (
	QuestionTypeSingle   = "single"
	QuestionTypeMultiple = "multiple"
	QuestionTypeText     = "text"
)

// SlideResource is instructor-authored interactive content anchored between
// two adjacent slide positions. It is active on slide s when
// ShowAfterSlide <= s < ShowBeforeSlide.
type SlideResource struct {
	ID              string
	Type            ResourceType
	Title           string
	ShowAfterSlide  int
	ShowBeforeSlide int
	Content         ResourceContent
}

// ResourceContent is a tagged union: exactly the field matching the owning
// resource's Type is set.
type ResourceContent struct {
	Media      *MediaContent
	Quiz       *QuizContent
	Flashcards *FlashcardContent
}

type MediaContent struct {
	URL             string `json:"url"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

type QuizContent struct {
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID            string       `json:"id"`
	Type          string       `json:"type"`
	Prompt        string       `json:"prompt"`
	Options       []QuizOption `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Required      bool         `json:"required,omitempty"`
}

type QuizOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuizAnswer struct {
	QuestionID string   `json:"question_id"`
	OptionIDs  []string `json:"option_ids,omitempty"`
	TextAnswer string   `json:"text_answer,omitempty"`
}

type FlashcardContent struct {
	Cards []Flashcard `json:"cards"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// NewSlideResource builds a validated resource anchored after the given
// slide. The window is always one slide wide.
func NewSlideResource(id string, typ ResourceType, title string, showAfterSlide int, content ResourceContent) (SlideResource, error) {
	r := SlideResource{
		ID:              id,
		Type:            typ,
		Title:           title,
		ShowAfterSlide:  showAfterSlide,
		ShowBeforeSlide: showAfterSlide + 1,
		Content:         content,
	}
	if err := r.Validate(); err != nil {
		return SlideResource{}, err
	}
	return r, nil
}

func (r SlideResource) Active(slide int) bool {
	return r.ShowAfterSlide <= slide && slide < r.ShowBeforeSlide
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", app_errors.ErrInvalidResource, fmt.Sprintf(format, args...))
}

func (r SlideResource) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return invalid("id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return invalid("title is required")
	}
	if r.ShowAfterSlide < 0 {
		return invalid("show_after_slide must not be negative")
	}
	if r.ShowBeforeSlide != r.ShowAfterSlide+1 {
		return invalid("show_before_slide must be show_after_slide+1")
	}

	c := r.Content
	switch r.Type {
	case ResourceTypeVideo, ResourceTypeAudio:
		if c.Media == nil || c.Quiz != nil || c.Flashcards != nil {
			return invalid("%s resource needs media content only", r.Type)
		}
		if strings.TrimSpace(c.Media.URL) == "" {
			return invalid("%s resource needs a url", r.Type)
		}
	case ResourceTypeQuiz:
		if c.Quiz == nil || c.Media != nil || c.Flashcards != nil {
			return invalid("quiz resource needs quiz content only")
		}
		if c.Quiz.ValidQuestions() == 0 {
			return invalid("quiz has no valid questions")
		}
	case ResourceTypeFlashcard:
		if c.Flashcards == nil || c.Media != nil || c.Quiz != nil {
			return invalid("flashcard resource needs flashcard content only")
		}
		for _, card := range c.Flashcards.Cards {
			if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
				return invalid("flashcard needs front and back")
			}
		}
		if len(c.Flashcards.Cards) == 0 {
			return invalid("flashcard resource has no cards")
		}
	default:
		return invalid("unknown resource type %q", r.Type)
	}
	return nil
}

// ValidQuestions counts questions that can actually be answered and graded.
func (q *QuizContent) ValidQuestions() int {
	n := 0
	for _, question := range q.Questions {
		if question.valid() {
			n++
		}
	}
	return n
}

func (q QuizQuestion) valid() bool {
	if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Prompt) == "" {
		return false
	}
	switch q.Type {
	case QuestionTypeSingle, QuestionTypeMultiple:
		if len(q.Options) < 2 {
			return false
		}
		for _, o := range q.Options {
			if o.IsCorrect {
				return true
			}
		}
		return false
	case QuestionTypeText:
		return strings.TrimSpace(q.CorrectAnswer) != ""
	}
	return false
}

type slideResourceJSON struct {
	ID              string          `json:"id"`
	Type            ResourceType    `json:"type"`
	Title           string          `json:"title"`
	ShowAfterSlide  int             `json:"show_after_slide"`
	ShowBeforeSlide int             `json:"show_before_slide"`
	Content         json.RawMessage `json:"content"`
}

func (r SlideResource) MarshalJSON() ([]byte, error) {
	var payload any
	switch r.Type {
	case ResourceTypeVideo, ResourceTypeAudio:
		payload = r.Content.Media
	case ResourceTypeQuiz:
		payload = r.Content.Quiz
	case ResourceTypeFlashcard:
		payload = r.Content.Flashcards
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(slideResourceJSON{
		ID:              r.ID,
		Type:            r.Type,
		Title:           r.Title,
		ShowAfterSlide:  r.ShowAfterSlide,
		ShowBeforeSlide: r.ShowBeforeSlide,
		Content:         raw,
	})
}

// UnmarshalJSON decodes the content payload according to "type". It does not
// validate; callers run Validate before accepting authored input.
func (r *SlideResource) UnmarshalJSON(data []byte) error {
	var raw slideResourceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := DecodeResourceContent(raw.Type, raw.Content)
	if err != nil {
		return err
	}
	*r = SlideResource{
		ID:              raw.ID,
		Type:            raw.Type,
		Title:           raw.Title,
		ShowAfterSlide:  raw.ShowAfterSlide,
		ShowBeforeSlide: raw.ShowBeforeSlide,
		Content:         content,
	}
	return nil
}

func DecodeResourceContent(typ ResourceType, raw json.RawMessage) (ResourceContent, error) {
	var c ResourceContent
	if len(raw) == 0 || string(raw) == "null" {
		return c, nil
	}
	var err error
	switch typ {
	case ResourceTypeVideo, ResourceTypeAudio:
		c.Media = &MediaContent{}
		err = json.Unmarshal(raw, c.Media)
	case ResourceTypeQuiz:
		c.Quiz = &QuizContent{}
		err = json.Unmarshal(raw, c.Quiz)
	case ResourceTypeFlashcard:
		c.Flashcards = &FlashcardContent{}
		err = json.Unmarshal(raw, c.Flashcards)
	default:
		return c, invalid("unknown resource type %q", typ)
	}
	if err != nil {
		return ResourceContent{}, fmt.Errorf("%w: %s content: %v", app_errors.ErrInvalidResource, typ, err)
	}
	return c, nil
}
