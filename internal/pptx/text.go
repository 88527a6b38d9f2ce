package pptx

import (
	"strings"

	"LiqLearns/internal/models"
)

var alignments = map[string]models.Alignment{
	"l":    models.AlignLeft,
	"ctr":  models.AlignCenter,
	"r":    models.AlignRight,
	"just": models.AlignJustify,
	"dist": models.AlignJustify,
}

func convertParagraphs(body *xmlTxBody) []models.TextParagraph {
	if body == nil {
		return nil
	}
	out := make([]models.TextParagraph, 0, len(body.Paragraphs))
	for _, xp := range body.Paragraphs {
		out = append(out, convertParagraph(xp))
	}
	return out
}

func convertParagraph(xp xmlParagraph) models.TextParagraph {
	p := models.TextParagraph{Runs: make([]models.TextRun, 0, len(xp.Items))}
	if ppr := xp.PPr; ppr != nil {
		p.Alignment = alignments[ppr.Algn]
		p.Level = ppr.Lvl
		switch {
		case ppr.BuNone != nil:
			p.BulletType = models.BulletNone
		case ppr.BuAutoNum != nil:
			p.BulletType = models.BulletNumber
		case ppr.BuChar != nil:
			p.BulletType = models.BulletBullet
		}
	}
	for _, item := range xp.Items {
		if item.lineBreak {
			p.Runs = append(p.Runs, models.TextRun{Text: "\n"})
			continue
		}
		p.Runs = append(p.Runs, convertRun(item.run))
	}
	return p
}

func convertRun(xr *xmlRun) models.TextRun {
	r := models.TextRun{Text: xr.T}
	rpr := xr.RPr
	if rpr == nil {
		return r
	}
	r.Bold = xmlBool(rpr.B)
	r.Italic = xmlBool(rpr.I)
	r.Underline = rpr.U != "" && rpr.U != "none"
	if rpr.Sz > 0 {
		r.FontSize = fontPoints(rpr.Sz)
	}
	r.Color = hexColor(rpr.SolidFill)
	if rpr.Latin != nil {
		r.FontFamily = rpr.Latin.Typeface
	}
	return r
}

func xmlBool(v string) bool {
	return v == "1" || v == "true"
}

// textLines splits paragraphs into visible lines, dropping blank ones.
func textLines(paragraphs []models.TextParagraph) []string {
	var lines []string
	for _, p := range paragraphs {
		for _, line := range strings.Split(p.Text(), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}
