package pptx

import (
	"math"
	"strings"
)

const (
	EMUPerPoint = 12700
	// Rotation angles are stored in 60000ths of a degree.
	rotationPerDegree = 60000
	// Font sizes are stored in hundredths of a point.
	fontSizePerPoint = 100

	DefaultSlideWidth  int64 = 12192000
	DefaultSlideHeight int64 = 6858000
)

// SlideSize is the slide canvas in EMU.
type SlideSize struct {
	Width  int64
	Height int64
}

func slideSize(x *xmlSize) SlideSize {
	if x == nil || x.Cx <= 0 || x.Cy <= 0 {
		return SlideSize{Width: DefaultSlideWidth, Height: DefaultSlideHeight}
	}
	return SlideSize{Width: x.Cx, Height: x.Cy}
}

// Percent converts a native coordinate to a percentage of dim, clamped to
// [0, 100].
func Percent(native, dim int64) float64 {
	if dim <= 0 {
		return 0
	}
	pct := float64(native) / float64(dim) * 100
	return math.Min(100, math.Max(0, pct))
}

// FromPercent is the inverse of Percent for in-range values.
func FromPercent(pct float64, dim int64) int64 {
	return int64(math.Round(pct * float64(dim) / 100))
}

func Degrees(rot int64) float64 {
	return float64(rot) / rotationPerDegree
}

func Points(emu int64) float64 {
	return float64(emu) / EMUPerPoint
}

func fontPoints(sz int) float64 {
	return float64(sz) / fontSizePerPoint
}

// hexColor turns an sRGB value such as "ff0000" into "#FF0000". Anything
// that is not six hex digits is dropped.
func hexColor(fill *xmlSolidFill) string {
	if fill == nil || fill.SrgbClr == nil {
		return ""
	}
	v := strings.ToUpper(strings.TrimSpace(fill.SrgbClr.Val))
	if len(v) != 6 {
		return ""
	}
	for _, c := range v {
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return ""
		}
	}
	return "#" + v
}

type box struct {
	x, y, w, h float64
	rotation   float64
}

func normalizeXfrm(x *xmlXfrm, size SlideSize) (box, bool) {
	if x == nil || x.Off == nil || x.Ext == nil {
		return box{}, false
	}
	return box{
		x:        Percent(x.Off.X, size.Width),
		y:        Percent(x.Off.Y, size.Height),
		w:        Percent(x.Ext.Cx, size.Width),
		h:        Percent(x.Ext.Cy, size.Height),
		rotation: Degrees(x.Rot),
	}, true
}
