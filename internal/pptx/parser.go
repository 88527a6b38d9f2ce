// Package pptx turns PresentationML packages into models.ParsedPresentation.
package pptx

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"

	"golang.org/x/sync/errgroup"
)

var errMalformedPart = errors.New("malformed part")

// Media is an image extracted from the package, keyed by its ImageRef.
type Media struct {
	Data        []byte
	ContentType string
}

// SlideFailure reports a slide that was replaced by a placeholder.
type SlideFailure struct {
	Index int
	Part  string
	Err   error
}

func (f SlideFailure) Error() string {
	return fmt.Sprintf("slide %d (%s): %v", f.Index, f.Part, f.Err)
}

func (f SlideFailure) Unwrap() error {
	return f.Err
}

type Result struct {
	Presentation models.ParsedPresentation
	Media        map[models.ImageRef]Media
	Failures     []SlideFailure
}

// FailureSummary is the author-facing note about degraded slides, empty when
// every slide was extracted.
func (r *Result) FailureSummary() string {
	if len(r.Failures) == 0 {
		return ""
	}
	return fmt.Sprintf("%d of %d slides could not be fully extracted", len(r.Failures), r.Presentation.TotalSlides)
}

type Parser struct {
	log     logger.Log
	workers int
}

func NewParser(log logger.Log, workers int) *Parser {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parser{log: log, workers: workers}
}

// Parse decodes a .pptx held in memory. Only container and manifest problems
// are returned as errors (*app_errors.ParseError); broken slides become
// placeholders listed in Result.Failures. Parsing the same bytes always yields
// an equal Result.
func (p *Parser) Parse(ctx context.Context, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, err := openPackage(data)
	if err != nil {
		return nil, app_errors.NewParseError(app_errors.ErrInvalidArchive, "", err)
	}

	mainPart, err := officeDocument(pkg)
	if err != nil {
		return nil, err
	}
	pres, presRels, err := loadPresentation(pkg, mainPart)
	if err != nil {
		return nil, err
	}
	size := slideSize(pres.SldSz)

	sources := make([]slideSource, len(pres.SldIDs))
	for i, id := range pres.SldIDs {
		target, _ := presRels.byID(id.RID, relSlide)
		sources[i] = slideSource{index: i + 1, part: target, rid: id.RID}
	}

	outputs := make([]slideOutput, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs[i] = extractSlide(pkg, size, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Presentation: models.ParsedPresentation{
			TotalSlides: len(outputs),
			Slides:      make([]models.ParsedSlide, len(outputs)),
		},
		Media: map[models.ImageRef]Media{},
	}
	for i, out := range outputs {
		res.Presentation.Slides[i] = out.slide
		for ref, m := range out.media {
			res.Media[ref] = m
		}
		if out.failure != nil {
			p.log.Warn("slide replaced by placeholder",
				"index", out.failure.Index,
				"part", out.failure.Part,
				logger.Err(out.failure.Err),
			)
			res.Failures = append(res.Failures, *out.failure)
		}
	}
	return res, nil
}

// manifestError classifies a failure reading a package-level part.
func manifestError(part string, err error) error {
	switch {
	case errors.Is(err, errPartNotFound):
		return app_errors.NewParseError(app_errors.ErrMissingManifest, part, err)
	case errors.Is(err, errMalformedPart):
		return app_errors.NewParseError(app_errors.ErrMalformedXML, part, err)
	default:
		return app_errors.NewParseError(app_errors.ErrInvalidArchive, part, err)
	}
}

func officeDocument(pkg *opcPackage) (string, error) {
	const rootRels = "_rels/.rels"
	rels, err := pkg.loadRelationships("")
	if err != nil {
		return "", manifestError(rootRels, err)
	}
	target, ok := rels.firstOfType(relOfficeDocument)
	if !ok {
		return "", app_errors.NewParseError(app_errors.ErrMissingManifest, rootRels, errors.New("no officeDocument relationship"))
	}
	return target, nil
}

func loadPresentation(pkg *opcPackage, part string) (*xmlPresentation, relationships, error) {
	data, err := pkg.read(part)
	if err != nil {
		return nil, nil, manifestError(part, err)
	}
	root, err := rootElement(data)
	if err != nil {
		return nil, nil, app_errors.NewParseError(app_errors.ErrMalformedXML, part, err)
	}
	if root.Local != "presentation" {
		return nil, nil, app_errors.NewParseError(app_errors.ErrUnsupportedPart, part, fmt.Errorf("root element <%s>", root.Local))
	}
	var x xmlPresentation
	if err := decodeXML(data, &x); err != nil {
		return nil, nil, app_errors.NewParseError(app_errors.ErrMalformedXML, part, err)
	}
	rels, err := pkg.loadRelationships(part)
	if err != nil {
		return nil, nil, manifestError(relsPartFor(part), err)
	}
	return &x, rels, nil
}
