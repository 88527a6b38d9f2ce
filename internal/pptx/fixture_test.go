package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"
)

const (
	nsP       = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkgRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	relPrefix = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	// 4:3 canvas used by the fixtures: 914400 EMU is 10% of the width.
	fixtureWidth  = 9144000
	fixtureHeight = 6858000
)

func zipParts(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func rel(id, typ, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s"/>`, id, relPrefix, typ, target)
}

func relsXML(rels ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="` + nsPkgRels + `">` + strings.Join(rels, "") + `</Relationships>`
}

// deckParts lays out a minimal presentation with one part per slide body.
func deckParts(slides ...string) map[string]string {
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"_rels/.rels":         relsXML(rel("rId1", "officeDocument", "ppt/presentation.xml")),
	}
	var ids strings.Builder
	presRels := []string{}
	for i, body := range slides {
		n := i + 1
		// r:id is written before id on purpose: only the namespaced one counts.
		fmt.Fprintf(&ids, `<p:sldId r:id="rId%d" id="%d"/>`, n, 255+n)
		presRels = append(presRels, rel(fmt.Sprintf("rId%d", n), "slide", fmt.Sprintf("slides/slide%d.xml", n)))
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", n)] = body
	}
	parts["ppt/presentation.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:presentation xmlns:a="` + nsA + `" xmlns:p="` + nsP + `" xmlns:r="` + nsR + `">` +
		`<p:sldIdLst>` + ids.String() + `</p:sldIdLst>` +
		fmt.Sprintf(`<p:sldSz cx="%d" cy="%d"/>`, fixtureWidth, fixtureHeight) +
		`</p:presentation>`
	parts["ppt/_rels/presentation.xml.rels"] = relsXML(presRels...)
	return parts
}

func slideXML(tree string) string {
	return slideXMLWithBg("", tree)
}

func slideXMLWithBg(bg, tree string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="` + nsA + `" xmlns:p="` + nsP + `" xmlns:r="` + nsR + `"><p:cSld>` + bg + `<p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		tree + `</p:spTree></p:cSld></p:sld>`
}

func xfrm(x, y, cx, cy int64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, x, y, cx, cy)
}

// textShape builds a p:sp. ph is the placeholder element ("" for none),
// geometry the a:xfrm ("" to inherit).
func textShape(ph, geometry string, paragraphs ...string) string {
	return `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Shape"/><p:cNvSpPr/><p:nvPr>` + ph + `</p:nvPr></p:nvSpPr>` +
		`<p:spPr>` + geometry + `</p:spPr>` +
		`<p:txBody><a:bodyPr/><a:lstStyle/>` + strings.Join(paragraphs, "") + `</p:txBody></p:sp>`
}

func para(text string) string {
	return `<a:p><a:r><a:rPr lang="en-US"/><a:t>` + text + `</a:t></a:r></a:p>`
}

func picture(embed, geometry string) string {
	return `<p:pic><p:nvPicPr><p:cNvPr id="4" name="Picture"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
		`<p:blipFill><a:blip r:embed="` + embed + `"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>` +
		`<p:spPr>` + geometry + `</p:spPr></p:pic>`
}

const titlePh = `<p:ph type="title"/>`
