package render

import (
	"reflect"
	"testing"

	"LiqLearns/internal/models"
)

func textShape(text string, x, y float64) models.SlideShape {
	return models.SlideShape{
		Type: models.ShapeTypeText, X: x, Y: y, Width: 50, Height: 10,
		Content: []models.TextParagraph{{Runs: []models.TextRun{{Text: text}}}},
	}
}

func TestSelectPositionedKeepsShapeOrder(t *testing.T) {
	slide := models.ParsedSlide{
		Index:           1,
		Title:           "Cells",
		Layout:          models.LayoutCustom,
		BackgroundColor: "#000000",
		Images:          []models.ImageRef{"media/a.png", "media/b.png"},
		Shapes: []models.SlideShape{
			textShape("Cells", 0, 0),
			{Type: models.ShapeTypeImage, X: 50, Y: 50, Width: 25, Height: 25, ImageSrc: "media/a.png"},
			textShape("Membrane", 10, 60),
		},
	}
	plan := Select(slide)
	if plan.Strategy != StrategyPositioned {
		t.Fatalf("strategy = %q", plan.Strategy)
	}
	kinds := make([]LayerKind, 0, len(plan.Layers))
	for _, l := range plan.Layers {
		kinds = append(kinds, l.Kind)
	}
	want := []LayerKind{LayerBackground, LayerImage, LayerShape, LayerShape, LayerShape}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("layers = %v, want %v", kinds, want)
	}
	if plan.Layers[1].Image != "media/b.png" || plan.Layers[1].Z != 0 {
		t.Fatalf("unframed image layer = %+v", plan.Layers[1])
	}
	if plan.Layers[0].Z >= plan.Layers[1].Z || plan.Layers[1].Z >= plan.Layers[2].Z {
		t.Fatal("background, images and shapes are not stacked in order")
	}
	if plan.Layers[4].Shape.Text() != "Membrane" || plan.Layers[4].Box.Y != 60 {
		t.Fatalf("last shape layer = %+v", plan.Layers[4])
	}
}

func TestSelectPositionedSynthesizesMissingTitle(t *testing.T) {
	slide := models.ParsedSlide{
		Index:  2,
		Title:  "Slide 2",
		Layout: models.LayoutCustom,
		Shapes: []models.SlideShape{textShape("Only body text", 0, 50)},
	}
	plan := Select(slide)
	last := plan.Layers[len(plan.Layers)-1]
	if last.Kind != LayerTitle || last.Z != 10 || last.Text[0] != "Slide 2" {
		t.Fatalf("expected title overlay, got %+v", last)
	}

	slide.Title = "Only   body text"
	for _, l := range Select(slide).Layers {
		if l.Kind == LayerTitle {
			t.Fatal("title overlay duplicated a shape that already shows the title")
		}
	}
}

func TestSelectGallery(t *testing.T) {
	slide := models.ParsedSlide{
		Title:   "Photos",
		Layout:  models.LayoutCustom,
		Images:  []models.ImageRef{"media/1.jpg", "media/2.jpg"},
		Content: []string{"caption"},
	}
	plan := Select(slide)
	if plan.Strategy != StrategyGallery {
		t.Fatalf("strategy = %q", plan.Strategy)
	}
	if len(plan.Layers) != 4 || plan.Layers[0].Kind != LayerTitle || plan.Layers[3].Kind != LayerText {
		t.Fatalf("layers = %+v", plan.Layers)
	}
}

func TestSelectTemplated(t *testing.T) {
	tests := []struct {
		layout models.Layout
		kinds  []LayerKind
	}{
		{models.LayoutBlank, []LayerKind{}},
		{models.LayoutTitle, []LayerKind{LayerTitle}},
		{models.LayoutTitleContent, []LayerKind{LayerTitle, LayerText}},
		{models.LayoutCustom, []LayerKind{LayerTitle, LayerText}},
		{models.LayoutTwoColumn, []LayerKind{LayerTitle, LayerText, LayerText}},
	}
	for _, tt := range tests {
		t.Run(string(tt.layout), func(t *testing.T) {
			slide := models.ParsedSlide{Title: "T", Layout: tt.layout, Content: []string{"a", "b", "c"}}
			plan := Select(slide)
			if plan.Strategy != StrategyTemplated || plan.Layout != tt.layout {
				t.Fatalf("plan = %+v", plan)
			}
			kinds := []LayerKind{}
			for _, l := range plan.Layers {
				kinds = append(kinds, l.Kind)
			}
			if !reflect.DeepEqual(kinds, tt.kinds) {
				t.Fatalf("layers = %v, want %v", kinds, tt.kinds)
			}
		})
	}
}

func TestSplitColumns(t *testing.T) {
	left, right := SplitColumns([]string{"1", "2", "3", "4", "5"})
	if !reflect.DeepEqual(left, []string{"1", "2", "3"}) || !reflect.DeepEqual(right, []string{"4", "5"}) {
		t.Fatalf("split = %v | %v", left, right)
	}
	left, right = SplitColumns(nil)
	if len(left) != 0 || len(right) != 0 {
		t.Fatalf("empty split = %v | %v", left, right)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	slides := []models.ParsedSlide{
		{Title: "a", Layout: models.LayoutTwoColumn, Content: []string{"x", "y"}},
		{Title: "b", Images: []models.ImageRef{"media/z.png"}},
		{Title: "c", Shapes: []models.SlideShape{textShape("c", 1, 1)}},
	}
	for _, s := range slides {
		if !reflect.DeepEqual(Select(s), Select(s)) {
			t.Fatalf("plan for %q is not deterministic", s.Title)
		}
	}
}
