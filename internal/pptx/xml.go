package pptx

import (
	"bytes"
	"encoding/xml"

	"golang.org/x/net/html/charset"
)

func newDecoder(data []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.CharsetReader = charset.NewReaderLabel
	return d
}

func decodeXML(data []byte, v any) error {
	return newDecoder(data).Decode(v)
}

// rootElement returns the name of the document element without decoding the
// rest of the part.
func rootElement(data []byte) (xml.Name, error) {
	d := newDecoder(data)
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.Name{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name, nil
		}
	}
}

type xmlRelationships struct {
	Relationships []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type xmlPresentation struct {
	SldSz  *xmlSize   `xml:"sldSz"`
	SldIDs []xmlSldID `xml:"sldIdLst>sldId"`
}

// sldId carries both a numeric id and r:id; only the namespaced one is wanted.
type xmlSldID struct {
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// xmlSlide is shared by slides, notes, layouts and masters: all of them keep
// their shapes under cSld/spTree.
type xmlSlide struct {
	CSld xmlCSld `xml:"cSld"`
}

type xmlCSld struct {
	Bg     *xmlBg    `xml:"bg"`
	SpTree xmlSpTree `xml:"spTree"`
}

type xmlBg struct {
	BgPr *xmlBgPr `xml:"bgPr"`
}

type xmlBgPr struct {
	SolidFill *xmlSolidFill `xml:"solidFill"`
	BlipFill  *xmlBlipFill  `xml:"blipFill"`
}

type spTreeItem struct {
	shape *xmlShape
	pic   *xmlPicture
}

// xmlSpTree keeps shapes and pictures in document order, which is also their
// stacking order. Group shapes, connectors and graphic frames are skipped.
type xmlSpTree struct {
	Items []spTreeItem
}

func (t *xmlSpTree) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sp":
				var s xmlShape
				if err := d.DecodeElement(&s, &el); err != nil {
					return err
				}
				t.Items = append(t.Items, spTreeItem{shape: &s})
			case "pic":
				var p xmlPicture
				if err := d.DecodeElement(&p, &el); err != nil {
					return err
				}
				t.Items = append(t.Items, spTreeItem{pic: &p})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type xmlNvPr struct {
	Ph *xmlPlaceholder `xml:"ph"`
}

type xmlPlaceholder struct {
	Type string `xml:"type,attr"`
	Idx  string `xml:"idx,attr"`
}

type xmlShape struct {
	NvSpPr struct {
		NvPr xmlNvPr `xml:"nvPr"`
	} `xml:"nvSpPr"`
	SpPr   xmlSpPr    `xml:"spPr"`
	TxBody *xmlTxBody `xml:"txBody"`
}

type xmlPicture struct {
	NvPicPr struct {
		NvPr xmlNvPr `xml:"nvPr"`
	} `xml:"nvPicPr"`
	BlipFill xmlBlipFill `xml:"blipFill"`
	SpPr     xmlSpPr     `xml:"spPr"`
}

type xmlBlipFill struct {
	Blip *struct {
		Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
	} `xml:"blip"`
}

type xmlSpPr struct {
	Xfrm      *xmlXfrm      `xml:"xfrm"`
	SolidFill *xmlSolidFill `xml:"solidFill"`
	Ln        *xmlLine      `xml:"ln"`
}

type xmlXfrm struct {
	Rot int64     `xml:"rot,attr"`
	Off *xmlPoint `xml:"off"`
	Ext *xmlSize  `xml:"ext"`
}

type xmlPoint struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type xmlSize struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

type xmlSolidFill struct {
	SrgbClr *struct {
		Val string `xml:"val,attr"`
	} `xml:"srgbClr"`
}

type xmlLine struct {
	W         int64         `xml:"w,attr"`
	SolidFill *xmlSolidFill `xml:"solidFill"`
	NoFill    *struct{}     `xml:"noFill"`
}

type xmlTxBody struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

type paragraphItem struct {
	run       *xmlRun
	lineBreak bool
}

// xmlParagraph keeps runs, fields and line breaks in document order.
type xmlParagraph struct {
	PPr   *xmlPPr
	Items []paragraphItem
}

func (p *xmlParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "pPr":
				var ppr xmlPPr
				if err := d.DecodeElement(&ppr, &el); err != nil {
					return err
				}
				p.PPr = &ppr
			case "r", "fld":
				var r xmlRun
				if err := d.DecodeElement(&r, &el); err != nil {
					return err
				}
				p.Items = append(p.Items, paragraphItem{run: &r})
			case "br":
				if err := d.Skip(); err != nil {
					return err
				}
				p.Items = append(p.Items, paragraphItem{lineBreak: true})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type xmlPPr struct {
	Algn      string    `xml:"algn,attr"`
	Lvl       int       `xml:"lvl,attr"`
	BuNone    *struct{} `xml:"buNone"`
	BuChar    *struct{} `xml:"buChar"`
	BuAutoNum *struct{} `xml:"buAutoNum"`
}

type xmlRun struct {
	RPr *xmlRPr `xml:"rPr"`
	T   string  `xml:"t"`
}

type xmlRPr struct {
	B         string        `xml:"b,attr"`
	I         string        `xml:"i,attr"`
	U         string        `xml:"u,attr"`
	Sz        int           `xml:"sz,attr"`
	SolidFill *xmlSolidFill `xml:"solidFill"`
	Latin     *struct {
		Typeface string `xml:"typeface,attr"`
	} `xml:"latin"`
}
