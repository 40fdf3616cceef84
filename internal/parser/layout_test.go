package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func row(y, size float64, words ...string) textRow {
	r := textRow{Y: y}
	x := 0.0
	for _, w := range words {
		for _, ch := range w {
			r.add(glyph{X: x, W: size * 0.5, Size: size, S: string(ch)})
			x += size * 0.5
		}
		x += size // word gap
	}
	return r
}

func TestLayoutRows_WordsAndBlankLines(t *testing.T) {
	rows := []textRow{
		row(800, 20, "DET", "SOCIALE"),
		row(760, 10, "01", "Det", "naturlige", "møde"),
		row(748, 10, "Beskrivelse"),
	}
	got := layoutRows(rows)
	assert.Equal(t, "DET SOCIALE\n\n01 Det naturlige møde\nBeskrivelse", got)
}

func TestLayoutRows_DefaultSizeWhenUnknown(t *testing.T) {
	rows := []textRow{
		{Y: 100, Glyphs: []glyph{{S: "a"}}},
		{Y: 95, Glyphs: []glyph{{S: "b"}}},
		{Y: 50, Glyphs: []glyph{{S: "c"}}},
	}
	assert.Equal(t, "a\nb\n\nc", layoutRows(rows))
}

func TestSameLineTolerance(t *testing.T) {
	assert.Equal(t, 2.0, sameLineTolerance(0))
	assert.Equal(t, 5.0, sameLineTolerance(10))
}
