package pptx

import "LiqLearns/internal/models"

// LayoutHints is what the classifier looks at. ContentGroups counts the
// non-title text shapes that contributed at least one content line.
type LayoutHints struct {
	HasTitle      bool
	ContentLines  int
	ContentGroups int
	Shapes        int
	Images        int
}

// ClassifyLayout picks a template for slides that carry no positioned
// geometry. Slides with shapes or images are rendered as they were authored.
func ClassifyLayout(h LayoutHints) models.Layout {
	if h.Shapes > 0 || h.Images > 0 {
		return models.LayoutCustom
	}
	switch {
	case !h.HasTitle && h.ContentLines == 0:
		return models.LayoutBlank
	case h.ContentLines == 0:
		return models.LayoutTitle
	case h.ContentGroups == 2:
		return models.LayoutTwoColumn
	default:
		return models.LayoutTitleContent
	}
}
