package game

import (
	"math"
	"strings"
)

// Category classifies a progress value for rendering.
type Category string

const (
	CategoryNeutral Category = "N" // no guesses yet
	CategoryHigh    Category = "H" // far from the word
	CategoryMedium  Category = "M"
	CategoryLow     Category = "L" // close to the word
)

// Progress is the 1–10 closeness value shown as a bar.
type Progress struct {
	Value    int      `json:"value"`
	Category Category `json:"type"`
}

const (
	// MaxDistance is the upper end of the distance domain of the rate curve.
	MaxDistance = 40000

	barCells  = 10
	rateBase  = 0.5
	rateStart = 0.0
	rateEnd   = 10.0
)

var glyphs = map[Category]string{
	CategoryNeutral: "⚪",
	CategoryHigh:    "🔴",
	CategoryMedium:  "🟡",
	CategoryLow:     "🟢",
}

func rateCalc(v float64) float64 { return rateBase * math.Exp(-rateBase*v) }

// Rate maps a distance to a progress value in [1,10] on a decaying
// exponential renormalised over [0, MaxDistance].
func Rate(distance int) Progress {
	startY, endY := rateCalc(rateStart), rateCalc(rateEnd)
	x := float64(distance) / MaxDistance * (rateEnd - rateStart)

	value := int(math.Floor((rateCalc(x) - endY) / (startY - endY) * barCells))
	value = max(value, 1)
	value = min(value, barCells)

	return Progress{Value: value, Category: categoryOf(value)}
}

func categoryOf(value int) Category {
	switch {
	case value < 4:
		return CategoryHigh
	case value < 8:
		return CategoryMedium
	default:
		return CategoryLow
	}
}

// Bar renders the progress as ten cells: Value cells of the category glyph
// followed by neutral cells.
func (p Progress) Bar() string {
	filled := min(max(p.Value, 0), barCells)
	if p.Category == CategoryNeutral {
		filled = 0
	}
	var b strings.Builder
	b.WriteString(strings.Repeat(glyphs[p.Category], filled))
	b.WriteString(strings.Repeat(glyphs[CategoryNeutral], barCells-filled))
	return b.String()
}
