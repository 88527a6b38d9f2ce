// Package render decides how a parsed slide is drawn. Select is pure: the
// same slide always produces the same plan.
package render

import (
	"strings"

	"LiqLearns/internal/models"
)

type Strategy string

const (
	StrategyPositioned Strategy = "positioned"
	StrategyGallery    Strategy = "gallery"
	StrategyTemplated  Strategy = "templated"
)

type LayerKind string

const (
	LayerBackground LayerKind = "background"
	LayerImage      LayerKind = "image"
	LayerShape      LayerKind = "shape"
	LayerTitle      LayerKind = "title"
	LayerText       LayerKind = "text"
)

const (
	zBackground = -1
	zImage      = 0
	zContent    = 5
	zTitle      = 10
)

// Box is in percent of the slide canvas.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var (
	fullBleed    = Box{X: 0, Y: 0, Width: 100, Height: 100}
	titleBand    = Box{X: 5, Y: 5, Width: 90, Height: 15}
	titleCentred = Box{X: 10, Y: 35, Width: 80, Height: 30}
	bodyBox      = Box{X: 5, Y: 25, Width: 90, Height: 70}
	leftColumn   = Box{X: 5, Y: 25, Width: 43, Height: 70}
	rightColumn  = Box{X: 52, Y: 25, Width: 43, Height: 70}
)

type Layer struct {
	Kind   LayerKind          `json:"kind"`
	Z      int                `json:"z"`
	Box    *Box               `json:"box,omitempty"`
	Shape  *models.SlideShape `json:"shape,omitempty"`
	Image  models.ImageRef    `json:"image,omitempty"`
	Text   []string           `json:"text,omitempty"`
	Color  string             `json:"color,omitempty"`
	Column int                `json:"column,omitempty"`
}

type Plan struct {
	Strategy Strategy      `json:"strategy"`
	Layout   models.Layout `json:"layout"`
	Layers   []Layer       `json:"layers"`
}

func boxOf(b Box) *Box {
	return &b
}

// Select picks a strategy: authored geometry wins, then an image gallery,
// then a template keyed by the classified layout.
func Select(slide models.ParsedSlide) Plan {
	switch {
	case len(slide.Shapes) > 0:
		return positioned(slide)
	case len(slide.Images) > 0:
		return gallery(slide)
	default:
		return templated(slide)
	}
}

func background(slide models.ParsedSlide) []Layer {
	if slide.BackgroundColor == "" && slide.BackgroundImage == "" {
		return nil
	}
	return []Layer{{
		Kind:  LayerBackground,
		Z:     zBackground,
		Box:   boxOf(fullBleed),
		Color: slide.BackgroundColor,
		Image: slide.BackgroundImage,
	}}
}

func positioned(slide models.ParsedSlide) Plan {
	plan := Plan{Strategy: StrategyPositioned, Layout: slide.Layout, Layers: background(slide)}

	placed := make(map[models.ImageRef]struct{})
	for _, s := range slide.Shapes {
		if s.Type == models.ShapeTypeImage {
			placed[s.ImageSrc] = struct{}{}
		}
	}
	// Images without their own frame cover the canvas underneath the shapes.
	for _, ref := range slide.Images {
		if _, ok := placed[ref]; ok {
			continue
		}
		plan.Layers = append(plan.Layers, Layer{Kind: LayerImage, Z: zImage, Box: boxOf(fullBleed), Image: ref})
	}

	titleShown := false
	want := normalize(slide.Title)
	for i := range slide.Shapes {
		s := slide.Shapes[i]
		plan.Layers = append(plan.Layers, Layer{
			Kind:  LayerShape,
			Z:     zContent,
			Box:   boxOf(Box{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}),
			Shape: &s,
		})
		if s.Type == models.ShapeTypeText && normalize(s.Text()) == want {
			titleShown = true
		}
	}
	if !titleShown && want != "" {
		plan.Layers = append(plan.Layers, Layer{Kind: LayerTitle, Z: zTitle, Box: boxOf(titleBand), Text: []string{slide.Title}})
	}
	return plan
}

func gallery(slide models.ParsedSlide) Plan {
	plan := Plan{Strategy: StrategyGallery, Layout: slide.Layout, Layers: background(slide)}
	if slide.Title != "" {
		plan.Layers = append(plan.Layers, Layer{Kind: LayerTitle, Z: zTitle, Text: []string{slide.Title}})
	}
	for _, ref := range slide.Images {
		plan.Layers = append(plan.Layers, Layer{Kind: LayerImage, Z: zImage, Image: ref})
	}
	if len(slide.Content) > 0 {
		plan.Layers = append(plan.Layers, Layer{Kind: LayerText, Z: zContent, Text: slide.Content})
	}
	return plan
}

func templated(slide models.ParsedSlide) Plan {
	plan := Plan{Strategy: StrategyTemplated, Layout: slide.Layout, Layers: background(slide)}
	switch slide.Layout {
	case models.LayoutBlank:
	case models.LayoutTitle:
		plan.Layers = append(plan.Layers, Layer{Kind: LayerTitle, Z: zTitle, Box: boxOf(titleCentred), Text: []string{slide.Title}})
	case models.LayoutTwoColumn:
		left, right := SplitColumns(slide.Content)
		plan.Layers = append(plan.Layers,
			Layer{Kind: LayerTitle, Z: zTitle, Box: boxOf(titleBand), Text: []string{slide.Title}},
			Layer{Kind: LayerText, Z: zContent, Box: boxOf(leftColumn), Text: left, Column: 1},
			Layer{Kind: LayerText, Z: zContent, Box: boxOf(rightColumn), Text: right, Column: 2},
		)
	default:
		// titleContent, custom and anything unknown share the title-over-body template.
		plan.Layers = append(plan.Layers, Layer{Kind: LayerTitle, Z: zTitle, Box: boxOf(titleBand), Text: []string{slide.Title}})
		if len(slide.Content) > 0 {
			plan.Layers = append(plan.Layers, Layer{Kind: LayerText, Z: zContent, Box: boxOf(bodyBox), Text: slide.Content})
		}
	}
	return plan
}

// SplitColumns splits content at ceil(n/2); the left column gets the extra
// line.
func SplitColumns(content []string) (left, right []string) {
	mid := (len(content) + 1) / 2
	return content[:mid], content[mid:]
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
