package pptx

// placeholderIndex maps placeholder keys of a layout or master to their
// geometry. Keys are "idx:<n>" and "type:<t>".
type placeholderIndex map[string]*xmlXfrm

func placeholderType(t string) string {
	switch t {
	case "ctrTitle":
		return "title"
	case "", "obj", "subTitle":
		return "body"
	}
	return t
}

func (ix placeholderIndex) add(ph *xmlPlaceholder, x *xmlXfrm) {
	if ph == nil || x == nil {
		return
	}
	if ph.Idx != "" {
		if _, ok := ix["idx:"+ph.Idx]; !ok {
			ix["idx:"+ph.Idx] = x
		}
	}
	key := "type:" + placeholderType(ph.Type)
	if _, ok := ix[key]; !ok {
		ix[key] = x
	}
}

// lookup matches by index first, then by type.
func (ix placeholderIndex) lookup(ph *xmlPlaceholder) *xmlXfrm {
	if ph == nil {
		return nil
	}
	if ph.Idx != "" {
		if x, ok := ix["idx:"+ph.Idx]; ok {
			return x
		}
	}
	return ix["type:"+placeholderType(ph.Type)]
}

// inheritedPlaceholders collects placeholder geometry from the slide's layout
// and then its master. Earlier sources win. Any failure only means less
// inheritance.
func inheritedPlaceholders(pkg *opcPackage, rels relationships) placeholderIndex {
	ix := placeholderIndex{}
	layoutPart, ok := rels.firstOfType(relSlideLayout)
	if !ok {
		return ix
	}
	collectPlaceholders(pkg, layoutPart, ix)

	layoutRels, err := pkg.loadRelationships(layoutPart)
	if err != nil {
		return ix
	}
	if masterPart, ok := layoutRels.firstOfType(relSlideMaster); ok {
		collectPlaceholders(pkg, masterPart, ix)
	}
	return ix
}

func collectPlaceholders(pkg *opcPackage, part string, ix placeholderIndex) {
	data, err := pkg.read(part)
	if err != nil {
		return
	}
	var x xmlSlide
	if err := decodeXML(data, &x); err != nil {
		return
	}
	for _, item := range x.CSld.SpTree.Items {
		switch {
		case item.shape != nil:
			ix.add(item.shape.NvSpPr.NvPr.Ph, item.shape.SpPr.Xfrm)
		case item.pic != nil:
			ix.add(item.pic.NvPicPr.NvPr.Ph, item.pic.SpPr.Xfrm)
		}
	}
}
