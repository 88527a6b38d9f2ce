package pptx

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"LiqLearns/internal/models"
)

type slideSource struct {
	index int
	part  string
	rid   string
}

type slideOutput struct {
	slide   models.ParsedSlide
	media   map[models.ImageRef]Media
	failure *SlideFailure
}

func fallbackTitle(index int) string {
	return fmt.Sprintf("Slide %d", index)
}

func placeholderSlide(index int) models.ParsedSlide {
	return models.ParsedSlide{
		Index:   index,
		Title:   fallbackTitle(index),
		Content: []string{},
		Images:  []models.ImageRef{},
		Shapes:  []models.SlideShape{},
		Layout:  ClassifyLayout(LayoutHints{}),
	}
}

func failedSlide(src slideSource, err error) slideOutput {
	part := src.part
	if part == "" {
		part = src.rid
	}
	return slideOutput{
		slide:   placeholderSlide(src.index),
		failure: &SlideFailure{Index: src.index, Part: part, Err: err},
	}
}

type slideExtractor struct {
	pkg          *opcPackage
	size         SlideSize
	rels         relationships
	media        map[models.ImageRef]Media
	placeholders placeholderIndex
}

// extractSlide decodes one slide part. Failures never escape: the slide
// degrades to a placeholder and the failure is reported alongside it.
func extractSlide(pkg *opcPackage, size SlideSize, src slideSource) slideOutput {
	if src.part == "" {
		return failedSlide(src, fmt.Errorf("%w: relationship %q", errPartNotFound, src.rid))
	}
	data, err := pkg.read(src.part)
	if err != nil {
		return failedSlide(src, err)
	}
	var x xmlSlide
	if err := decodeXML(data, &x); err != nil {
		return failedSlide(src, fmt.Errorf("decode %s: %w", src.part, err))
	}
	rels, err := pkg.loadRelationships(src.part)
	if err != nil {
		if !errors.Is(err, errPartNotFound) {
			return failedSlide(src, err)
		}
		rels = relationships{}
	}

	ex := &slideExtractor{
		pkg:   pkg,
		size:  size,
		rels:  rels,
		media: map[models.ImageRef]Media{},
	}
	return slideOutput{slide: ex.extract(src.index, &x), media: ex.media}
}

func (ex *slideExtractor) extract(index int, x *xmlSlide) models.ParsedSlide {
	slide := models.ParsedSlide{
		Index:   index,
		Content: []string{},
		Images:  []models.ImageRef{},
		Shapes:  []models.SlideShape{},
	}
	hasTitle := false
	groups := 0

	for _, item := range x.CSld.SpTree.Items {
		switch {
		case item.shape != nil:
			s := item.shape
			paragraphs := convertParagraphs(s.TxBody)
			lines := textLines(paragraphs)
			if len(lines) == 0 {
				continue
			}
			ph := s.NvSpPr.NvPr.Ph
			if !hasTitle && isTitle(ph) {
				slide.Title = strings.Join(lines, " ")
				hasTitle = true
			} else {
				slide.Content = append(slide.Content, lines...)
				groups++
			}
			b, ok := ex.geometry(ph, s.SpPr.Xfrm)
			if !ok {
				continue
			}
			shape := models.SlideShape{
				Type:     models.ShapeTypeText,
				X:        b.x,
				Y:        b.y,
				Width:    b.w,
				Height:   b.h,
				Rotation: b.rotation,
				Fill:     hexColor(s.SpPr.SolidFill),
				Content:  paragraphs,
			}
			applyOutline(&shape, s.SpPr.Ln)
			slide.Shapes = append(slide.Shapes, shape)

		case item.pic != nil:
			pic := item.pic
			ref, ok := ex.image(&pic.BlipFill)
			if !ok {
				continue
			}
			slide.Images = appendRef(slide.Images, ref)
			b, ok := ex.geometry(pic.NvPicPr.NvPr.Ph, pic.SpPr.Xfrm)
			if !ok {
				continue
			}
			shape := models.SlideShape{
				Type:     models.ShapeTypeImage,
				X:        b.x,
				Y:        b.y,
				Width:    b.w,
				Height:   b.h,
				Rotation: b.rotation,
				ImageSrc: ref,
			}
			applyOutline(&shape, pic.SpPr.Ln)
			slide.Shapes = append(slide.Shapes, shape)
		}
	}

	if !hasTitle {
		slide.Title = fallbackTitle(index)
	}
	if bg := x.CSld.Bg; bg != nil && bg.BgPr != nil {
		slide.BackgroundColor = hexColor(bg.BgPr.SolidFill)
		if ref, ok := ex.image(bg.BgPr.BlipFill); ok {
			slide.BackgroundImage = ref
		}
	}
	if notesPart, ok := ex.rels.firstOfType(relNotesSlide); ok {
		slide.Notes = notesText(ex.pkg, notesPart)
	}

	slide.Layout = ClassifyLayout(LayoutHints{
		HasTitle:      hasTitle,
		ContentLines:  len(slide.Content),
		ContentGroups: groups,
		Shapes:        len(slide.Shapes),
		Images:        len(slide.Images),
	})
	return slide
}

func isTitle(ph *xmlPlaceholder) bool {
	return ph != nil && (ph.Type == "title" || ph.Type == "ctrTitle")
}

// geometry prefers the shape's own transform and falls back to the matching
// layout or master placeholder.
func (ex *slideExtractor) geometry(ph *xmlPlaceholder, own *xmlXfrm) (box, bool) {
	if b, ok := normalizeXfrm(own, ex.size); ok {
		return b, true
	}
	if ph == nil {
		return box{}, false
	}
	if ex.placeholders == nil {
		ex.placeholders = inheritedPlaceholders(ex.pkg, ex.rels)
	}
	return normalizeXfrm(ex.placeholders.lookup(ph), ex.size)
}

func (ex *slideExtractor) image(fill *xmlBlipFill) (models.ImageRef, bool) {
	if fill == nil || fill.Blip == nil || fill.Blip.Embed == "" {
		return "", false
	}
	target, ok := ex.rels.byID(fill.Blip.Embed, relImage)
	if !ok {
		return "", false
	}
	data, err := ex.pkg.read(target)
	if err != nil {
		return "", false
	}
	ref := imageRef(target, data)
	ex.media[ref] = Media{Data: data, ContentType: contentType(target)}
	return ref, true
}

// imageRef is content addressed so equal bytes always map to the same key.
func imageRef(part string, data []byte) models.ImageRef {
	sum := sha256.Sum256(data)
	return models.ImageRef("media/" + hex.EncodeToString(sum[:]) + strings.ToLower(path.Ext(part)))
}

func contentType(part string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(part))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func appendRef(refs []models.ImageRef, ref models.ImageRef) []models.ImageRef {
	for _, r := range refs {
		if r == ref {
			return refs
		}
	}
	return append(refs, ref)
}

func applyOutline(s *models.SlideShape, ln *xmlLine) {
	if ln == nil || ln.NoFill != nil {
		return
	}
	s.Stroke = hexColor(ln.SolidFill)
	if ln.W > 0 {
		s.StrokeWidth = Points(ln.W)
	}
}

// notesText returns the body placeholder text of a notes part.
func notesText(pkg *opcPackage, part string) string {
	data, err := pkg.read(part)
	if err != nil {
		return ""
	}
	var x xmlSlide
	if err := decodeXML(data, &x); err != nil {
		return ""
	}
	var lines []string
	for _, item := range x.CSld.SpTree.Items {
		if item.shape == nil {
			continue
		}
		ph := item.shape.NvSpPr.NvPr.Ph
		if ph == nil || ph.Type != "body" {
			continue
		}
		lines = append(lines, textLines(convertParagraphs(item.shape.TxBody))...)
	}
	return strings.Join(lines, "\n")
}
