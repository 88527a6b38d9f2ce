package pptx

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	relOfficeDocument = "officeDocument"
	relSlide          = "slide"
	relSlideLayout    = "slideLayout"
	relSlideMaster    = "slideMaster"
	relNotesSlide     = "notesSlide"
	relImage          = "image"
)

type relationship struct {
	typ    string
	target string
}

// relationships maps relationship ids of one source part to resolved part
// names. External targets are dropped.
type relationships map[string]relationship

// relsPartFor returns the rels part name of a source part: the package root
// "" maps to "_rels/.rels", "ppt/slides/slide1.xml" to
// "ppt/slides/_rels/slide1.xml.rels".
func relsPartFor(source string) string {
	if source == "" {
		return "_rels/.rels"
	}
	dir, base := path.Split(source)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget resolves a relationship target against the directory of the
// source part.
func resolveTarget(source, target string) string {
	target = strings.ReplaceAll(target, `\`, "/")
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// relType reduces a relationship type URI to its last segment, which is the
// same across the transitional and strict schemas.
func relType(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

func newRelationships(source string, x xmlRelationships) relationships {
	rels := make(relationships, len(x.Relationships))
	for _, r := range x.Relationships {
		if strings.EqualFold(r.TargetMode, "External") || r.ID == "" {
			continue
		}
		rels[r.ID] = relationship{typ: relType(r.Type), target: resolveTarget(source, r.Target)}
	}
	return rels
}

// loadRelationships reads the rels part of source. A missing rels part
// yields errPartNotFound so callers can tell it apart from malformed XML.
func (p *opcPackage) loadRelationships(source string) (relationships, error) {
	data, err := p.read(relsPartFor(source))
	if err != nil {
		return nil, err
	}
	var x xmlRelationships
	if err := decodeXML(data, &x); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedPart, err)
	}
	return newRelationships(source, x), nil
}

func (r relationships) byID(id, typ string) (string, bool) {
	rel, ok := r[id]
	if !ok || (typ != "" && rel.typ != typ) {
		return "", false
	}
	return rel.target, true
}

// firstOfType returns the target of the lowest-id relationship of a type so
// the choice does not depend on map order.
func (r relationships) firstOfType(typ string) (string, bool) {
	var bestID, best string
	for id, rel := range r {
		if rel.typ != typ {
			continue
		}
		if best == "" || relIDLess(id, bestID) {
			bestID, best = id, rel.target
		}
	}
	return best, best != ""
}

// relIDLess orders ids like "rId2" before "rId10" by their numeric suffix.
// Ids without one sort after numbered ids, lexically among themselves.
func relIDLess(a, b string) bool {
	na, okA := relIDNumber(a)
	nb, okB := relIDNumber(b)
	switch {
	case okA && okB && na != nb:
		return na < nb
	case okA != okB:
		return okA
	}
	return a < b
}

func relIDNumber(id string) (int, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return 0, false
	}
	n, err := strconv.Atoi(id[i:])
	return n, err == nil
}
