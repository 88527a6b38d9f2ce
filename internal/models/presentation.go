package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Layout string

const (
	LayoutTitle        Layout = "title"
	LayoutTitleContent Layout = "titleContent"
	LayoutTwoColumn    Layout = "twoColumn"
	LayoutBlank        Layout = "blank"
	LayoutCustom       Layout = "custom"
)

type ShapeType string

const (
	ShapeTypeText  ShapeType = "text"
	ShapeTypeImage ShapeType = "image"
)

type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

type BulletType string

const (
	BulletNone   BulletType = "none"
	BulletBullet BulletType = "bullet"
	BulletNumber BulletType = "number"
)

// ImageRef is an opaque handle to a media blob extracted from a deck. The
// parser produces content-addressed object keys ("media/<sha256><ext>").
type ImageRef string

type ParsedPresentation struct {
	TotalSlides int           `json:"total_slides"`
	Slides      []ParsedSlide `json:"slides"`
}

type ParsedSlide struct {
	Index           int          `json:"index"`
	Title           string       `json:"title"`
	Content         []string     `json:"content"`
	Images          []ImageRef   `json:"images"`
	Shapes          []SlideShape `json:"shapes"`
	Layout          Layout       `json:"layout"`
	BackgroundColor string       `json:"background_color,omitempty"`
	BackgroundImage ImageRef     `json:"background_image,omitempty"`
	Notes           string       `json:"notes,omitempty"`
}

type SlideShape struct {
	Type        ShapeType       `json:"type"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Rotation    float64         `json:"rotation,omitempty"`
	Fill        string          `json:"fill,omitempty"`
	Stroke      string          `json:"stroke,omitempty"`
	StrokeWidth float64         `json:"stroke_width,omitempty"`
	Content     []TextParagraph `json:"content,omitempty"`
	ImageSrc    ImageRef        `json:"image_src,omitempty"`
}

// Text returns the visible text of a text shape, one line per paragraph.
func (s SlideShape) Text() string {
	lines := make([]string, 0, len(s.Content))
	for _, p := range s.Content {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

type TextParagraph struct {
	Runs       []TextRun  `json:"runs"`
	Alignment  Alignment  `json:"alignment,omitempty"`
	BulletType BulletType `json:"bullet_type,omitempty"`
	Level      int        `json:"level,omitempty"`
}

func (p TextParagraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type TextRun struct {
	Text       string  `json:"text"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	Underline  bool    `json:"underline,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	Color      string  `json:"color,omitempty"`
	FontFamily string  `json:"font_family,omitempty"`
}

// Presentation is the durable authoring record. The uploaded binary is not
// kept once it has been parsed.
type Presentation struct {
	ID           uuid.UUID       `json:"id"`
	AuthorID     uuid.UUID       `json:"author_id"`
	FileName     string          `json:"file_name"`
	TotalSlides  int             `json:"total_slides"`
	UploadedAt   time.Time       `json:"uploaded_at"`
	Resources    []SlideResource `json:"resources"`
	LessonBreaks []LessonBreak   `json:"lesson_breaks"`
	Slides       []ParsedSlide   `json:"slides"`
}

// Slide returns the slide with the given 1-based index.
func (p *Presentation) Slide(index int) (ParsedSlide, bool) {
	if index < 1 || index > len(p.Slides) {
		return ParsedSlide{}, false
	}
	return p.Slides[index-1], true
}

type PresentationPreview struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	TotalSlides int       `json:"total_slides"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type LessonBreak struct {
	ID           string `json:"id"`
	AfterSlide   int    `json:"after_slide"`
	LessonNumber int    `json:"lesson_number"`
}
