package pptx

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"
)

func newTestParser() *Parser {
	return NewParser(logger.NewDiscard(), 4)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func richDeck(t *testing.T) []byte {
	t.Helper()
	body := `<a:p><a:pPr algn="ctr" lvl="1"><a:buChar char="•"/></a:pPr>` +
		`<a:r><a:rPr lang="en-US" b="1" i="0" u="sng" sz="2400"><a:solidFill><a:srgbClr val="1f4e79"/></a:solidFill><a:latin typeface="Calibri"/></a:rPr><a:t>Bold </a:t></a:r>` +
		`<a:r><a:t>plain</a:t></a:r></a:p>` +
		`<a:p><a:pPr><a:buAutoNum type="arabicPeriod"/></a:pPr><a:r><a:t>Second point</a:t></a:r></a:p>` +
		`<a:p><a:endParaRPr/></a:p>`
	tree := textShape(`<p:ph type="ctrTitle"/>`, xfrm(914400, 685800, 4572000, 1371600), para("Photosynthesis")) +
		`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Body"/><p:cNvSpPr/><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>` +
		`<p:spPr><a:xfrm rot="5400000"><a:off x="0" y="3429000"/><a:ext cx="9144000" cy="3429000"/></a:xfrm>` +
		`<a:solidFill><a:srgbClr val="FFFFFF"/></a:solidFill><a:ln w="25400"><a:solidFill><a:srgbClr val="000000"/></a:solidFill></a:ln></p:spPr>` +
		`<p:txBody><a:bodyPr/>` + body + `</p:txBody></p:sp>` +
		`<p:cxnSp><p:nvCxnSpPr/></p:cxnSp>` +
		picture("rIdImg", xfrm(4572000, 0, 4572000, 6858000)) +
		picture("rIdMissing", xfrm(0, 0, 10, 10))

	parts := deckParts(slideXMLWithBg(`<p:bg><p:bgPr><a:solidFill><a:srgbClr val="fafafa"/></a:solidFill></p:bgPr></p:bg>`, tree))
	parts["ppt/slides/_rels/slide1.xml.rels"] = relsXML(
		rel("rIdImg", "image", "../media/image1.PNG"),
		rel("rIdNotes", "notesSlide", "../notesSlides/notesSlide1.xml"),
	)
	parts["ppt/media/image1.PNG"] = "PNGDATA"
	parts["ppt/notesSlides/notesSlide1.xml"] = `<?xml version="1.0" encoding="UTF-8"?>` +
		`<p:notes xmlns:a="` + nsA + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` +
		textShape(`<p:ph type="sldImg"/>`, "", para("ignored")) +
		textShape(`<p:ph type="body" idx="1"/>`, "", para("Mention the light reactions"), para("Ask a question")) +
		`</p:spTree></p:cSld></p:notes>`
	return zipParts(t, parts)
}

func TestParseExtractsSlideContent(t *testing.T) {
	res, err := newTestParser().Parse(context.Background(), richDeck(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Presentation.TotalSlides != 1 || len(res.Presentation.Slides) != 1 {
		t.Fatalf("expected 1 slide, got %+v", res.Presentation)
	}
	s := res.Presentation.Slides[0]

	if s.Index != 1 || s.Title != "Photosynthesis" {
		t.Fatalf("index/title = %d/%q", s.Index, s.Title)
	}
	if want := []string{"Bold plain", "Second point"}; !reflect.DeepEqual(s.Content, want) {
		t.Fatalf("content = %q, want %q", s.Content, want)
	}
	if s.BackgroundColor != "#FAFAFA" {
		t.Fatalf("background = %q", s.BackgroundColor)
	}
	if s.Notes != "Mention the light reactions\nAsk a question" {
		t.Fatalf("notes = %q", s.Notes)
	}
	if s.Layout != models.LayoutCustom {
		t.Fatalf("layout = %q", s.Layout)
	}
	if len(s.Shapes) != 3 {
		t.Fatalf("expected 3 shapes (title, body, picture), got %d", len(s.Shapes))
	}

	title := s.Shapes[0]
	if title.Type != models.ShapeTypeText || !approx(title.X, 10) || !approx(title.Y, 10) || !approx(title.Width, 50) || !approx(title.Height, 20) {
		t.Fatalf("title geometry = %+v", title)
	}

	body := s.Shapes[1]
	if !approx(body.Rotation, 90) || body.Fill != "#FFFFFF" || body.Stroke != "#000000" || !approx(body.StrokeWidth, 2) {
		t.Fatalf("body styling = %+v", body)
	}
	if !approx(body.Y, 50) || !approx(body.Height, 50) || !approx(body.Width, 100) {
		t.Fatalf("body geometry = %+v", body)
	}
	p0 := body.Content[0]
	if p0.Alignment != models.AlignCenter || p0.Level != 1 || p0.BulletType != models.BulletBullet {
		t.Fatalf("paragraph props = %+v", p0)
	}
	r0 := p0.Runs[0]
	if !r0.Bold || r0.Italic || !r0.Underline || !approx(r0.FontSize, 24) || r0.Color != "#1F4E79" || r0.FontFamily != "Calibri" {
		t.Fatalf("run props = %+v", r0)
	}
	if p0.Text() != "Bold plain" {
		t.Fatalf("runs do not rebuild paragraph text: %q", p0.Text())
	}
	if body.Content[1].BulletType != models.BulletNumber {
		t.Fatalf("second paragraph bullet = %q", body.Content[1].BulletType)
	}

	pic := s.Shapes[2]
	if pic.Type != models.ShapeTypeImage || pic.Content != nil || !approx(pic.X, 50) || !approx(pic.Width, 50) {
		t.Fatalf("picture = %+v", pic)
	}
	if len(s.Images) != 1 || s.Images[0] != pic.ImageSrc {
		t.Fatalf("images = %v, picture src %q", s.Images, pic.ImageSrc)
	}
	ref := string(pic.ImageSrc)
	if !strings.HasPrefix(ref, "media/") || !strings.HasSuffix(ref, ".png") || len(ref) != len("media/")+64+len(".png") {
		t.Fatalf("unexpected image ref %q", ref)
	}
	m, ok := res.Media[pic.ImageSrc]
	if !ok || string(m.Data) != "PNGDATA" || m.ContentType != "image/png" {
		t.Fatalf("media = %+v (found %v)", m, ok)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures %v", res.Failures)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	data := richDeck(t)
	p := newTestParser()
	first, err := p.Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := p.Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(first.Presentation, second.Presentation) {
		t.Fatalf("presentations differ:\n%+v\n%+v", first.Presentation, second.Presentation)
	}
	if !reflect.DeepEqual(first.Media, second.Media) {
		t.Fatal("media differ between parses")
	}
}

func TestParseMalformedSlideBecomesPlaceholder(t *testing.T) {
	parts := deckParts(
		slideXML(textShape(titlePh, xfrm(0, 0, 100, 100), para("Intro"))),
		`<p:sld xmlns:p="`+nsP+`"><p:cSld><p:spTree><p:sp>`,
		slideXML(textShape(titlePh, "", para("Wrap up"))),
	)
	res, err := newTestParser().Parse(context.Background(), zipParts(t, parts))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	slides := res.Presentation.Slides
	if res.Presentation.TotalSlides != 3 || len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}
	for i, s := range slides {
		if s.Index != i+1 {
			t.Fatalf("slide %d has index %d", i, s.Index)
		}
	}
	if slides[1].Title != "Slide 2" || len(slides[1].Shapes) != 0 || len(slides[1].Content) != 0 {
		t.Fatalf("placeholder slide = %+v", slides[1])
	}
	if slides[2].Title != "Wrap up" {
		t.Fatalf("slide 3 title = %q", slides[2].Title)
	}
	if len(res.Failures) != 1 || res.Failures[0].Index != 2 || res.Failures[0].Part != "ppt/slides/slide2.xml" {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if got := res.FailureSummary(); got != "1 of 3 slides could not be fully extracted" {
		t.Fatalf("summary = %q", got)
	}
}

func TestParseMissingSlidePart(t *testing.T) {
	parts := deckParts(slideXML(""), slideXML(""))
	delete(parts, "ppt/slides/slide2.xml")
	res, err := newTestParser().Parse(context.Background(), zipParts(t, parts))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Failures) != 1 || !errors.Is(res.Failures[0].Err, errPartNotFound) {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if res.Presentation.Slides[0].Title != "Slide 1" || res.Presentation.Slides[0].Layout != models.LayoutBlank {
		t.Fatalf("empty slide = %+v", res.Presentation.Slides[0])
	}
}

func TestParseFatalErrors(t *testing.T) {
	docx := deckParts()
	docx["ppt/presentation.xml"] = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`

	noRoot := deckParts(slideXML(""))
	delete(noRoot, "_rels/.rels")

	noOfficeDoc := deckParts(slideXML(""))
	noOfficeDoc["_rels/.rels"] = relsXML(rel("rId9", "extended-properties", "docProps/app.xml"))

	badRootRels := deckParts(slideXML(""))
	badRootRels["_rels/.rels"] = `<Relationships><Relationship`

	noMain := deckParts(slideXML(""))
	delete(noMain, "ppt/presentation.xml")

	badMain := deckParts(slideXML(""))
	badMain["ppt/presentation.xml"] = `<p:presentation xmlns:p="` + nsP + `"><p:sldIdLst>`

	noPresRels := deckParts(slideXML(""))
	delete(noPresRels, "ppt/_rels/presentation.xml.rels")

	tests := []struct {
		name string
		data []byte
		kind error
	}{
		{"not a zip", []byte("definitely not a zip"), app_errors.ErrInvalidArchive},
		{"missing root rels", zipParts(t, noRoot), app_errors.ErrMissingManifest},
		{"no officeDocument relationship", zipParts(t, noOfficeDoc), app_errors.ErrMissingManifest},
		{"malformed root rels", zipParts(t, badRootRels), app_errors.ErrMalformedXML},
		{"missing presentation part", zipParts(t, noMain), app_errors.ErrMissingManifest},
		{"malformed presentation part", zipParts(t, badMain), app_errors.ErrMalformedXML},
		{"word document", zipParts(t, docx), app_errors.ErrUnsupportedPart},
		{"missing presentation rels", zipParts(t, noPresRels), app_errors.ErrMissingManifest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestParser().Parse(context.Background(), tt.data)
			if err == nil {
				t.Fatalf("expected error, got result %+v", res)
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("error %v is not %v", err, tt.kind)
			}
			var pe *app_errors.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a ParseError", err)
			}
		})
	}
}

func TestParseLineBreaksAndFields(t *testing.T) {
	p := `<a:p><a:r><a:t>first</a:t></a:r><a:br><a:rPr/></a:br><a:r><a:t>second</a:t></a:r>` +
		`<a:fld id="{1}" type="slidenum"><a:t>3</a:t></a:fld></a:p>`
	parts := deckParts(slideXML(textShape("", xfrm(0, 0, 100, 100), p)))
	res, err := newTestParser().Parse(context.Background(), zipParts(t, parts))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := res.Presentation.Slides[0]
	runs := s.Shapes[0].Content[0].Runs
	if len(runs) != 4 || runs[1].Text != "\n" || runs[3].Text != "3" {
		t.Fatalf("runs = %+v", runs)
	}
	if want := []string{"first", "second3"}; !reflect.DeepEqual(s.Content, want) {
		t.Fatalf("content = %q", s.Content)
	}
}

func TestParseInheritsPlaceholderGeometry(t *testing.T) {
	layout := `<p:sldLayout xmlns:a="` + nsA + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` +
		textShape(`<p:ph idx="1"/>`, xfrm(914400, 1371600, 7315200, 4114800)) +
		`</p:spTree></p:cSld></p:sldLayout>`
	master := `<p:sldMaster xmlns:a="` + nsA + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` +
		textShape(titlePh, xfrm(0, 0, 9144000, 685800)) +
		`</p:spTree></p:cSld></p:sldMaster>`

	parts := deckParts(slideXML(
		textShape(titlePh, "", para("Inherited title")) +
			textShape(`<p:ph idx="1"/>`, "", para("Inherited body")),
	))
	parts["ppt/slides/_rels/slide1.xml.rels"] = relsXML(rel("rId1", "slideLayout", "../slideLayouts/slideLayout2.xml"))
	parts["ppt/slideLayouts/slideLayout2.xml"] = layout
	parts["ppt/slideLayouts/_rels/slideLayout2.xml.rels"] = relsXML(rel("rId1", "slideMaster", "../slideMasters/slideMaster1.xml"))
	parts["ppt/slideMasters/slideMaster1.xml"] = master

	res, err := newTestParser().Parse(context.Background(), zipParts(t, parts))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	shapes := res.Presentation.Slides[0].Shapes
	if len(shapes) != 2 {
		t.Fatalf("expected both placeholders positioned, got %+v", shapes)
	}
	if !approx(shapes[0].Width, 100) || !approx(shapes[0].Height, 10) {
		t.Fatalf("title from master = %+v", shapes[0])
	}
	if !approx(shapes[1].X, 10) || !approx(shapes[1].Y, 20) || !approx(shapes[1].Width, 80) || !approx(shapes[1].Height, 60) {
		t.Fatalf("body from layout = %+v", shapes[1])
	}
}

func TestParseUnpositionedTextIsClassified(t *testing.T) {
	parts := deckParts(
		slideXML(textShape(titlePh, "", para("Only a title"))),
		slideXML(textShape(titlePh, "", para("Compare"))+
			textShape("", "", para("left one"), para("left two"))+
			textShape("", "", para("right one"))),
		slideXML(textShape(titlePh, "", para("Agenda"))+textShape("", "", para("one"), para("two"))),
		slideXML(textShape("", "", para("   "))),
	)
	res, err := newTestParser().Parse(context.Background(), zipParts(t, parts))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []models.Layout{models.LayoutTitle, models.LayoutTwoColumn, models.LayoutTitleContent, models.LayoutBlank}
	for i, s := range res.Presentation.Slides {
		if len(s.Shapes) != 0 {
			t.Fatalf("slide %d should have no positioned shapes", s.Index)
		}
		if s.Layout != want[i] {
			t.Fatalf("slide %d layout = %q, want %q", s.Index, s.Layout, want[i])
		}
	}
	if got := res.Presentation.Slides[3].Title; got != "Slide 4" {
		t.Fatalf("fallback title = %q", got)
	}
}

func TestParseDefaultSlideSize(t *testing.T) {
	parts := deckParts(slideXML(textShape("", xfrm(DefaultSlideWidth/4, 0, DefaultSlideWidth/2, DefaultSlideHeight), para("x"))))
	parts["ppt/presentation.xml"] = strings.Replace(parts["ppt/presentation.xml"],
		`<p:sldSz cx="9144000" cy="6858000"/>`, "", 1)
	res, err := newTestParser().Parse(context.Background(), zipParts(t, parts))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sh := res.Presentation.Slides[0].Shapes[0]
	if !approx(sh.X, 25) || !approx(sh.Width, 50) || !approx(sh.Height, 100) {
		t.Fatalf("geometry against default size = %+v", sh)
	}
}

func TestParseNonUTF8Part(t *testing.T) {
	latin1 := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		`<p:sld xmlns:a="` + nsA + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` +
		textShape(titlePh, "", "<a:p><a:r><a:t>Caf\xe9</a:t></a:r></a:p>") +
		`</p:spTree></p:cSld></p:sld>`
	res, err := newTestParser().Parse(context.Background(), zipParts(t, deckParts(latin1)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := res.Presentation.Slides[0].Title; got != "Café" {
		t.Fatalf("title = %q", got)
	}
}

func TestParseEmptyDeck(t *testing.T) {
	res, err := newTestParser().Parse(context.Background(), zipParts(t, deckParts()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Presentation.TotalSlides != 0 || len(res.Presentation.Slides) != 0 {
		t.Fatalf("expected empty presentation, got %+v", res.Presentation)
	}
}

func TestParseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestParser().Parse(ctx, richDeck(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
