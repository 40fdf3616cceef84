package parser

import "strings"

type glyph struct {
	X, W, Size float64
	S          string
}

type textRow struct {
	Y      float64
	Size   float64 // largest font size on the row
	Glyphs []glyph
}

func (r *textRow) add(g glyph) {
	if g.Size > r.Size {
		r.Size = g.Size
	}
	r.Glyphs = append(r.Glyphs, g)
}

// text joins the row's glyphs, inserting a space wherever the horizontal gap
// is wider than a fifth of the font size.
func (r textRow) text() string {
	var b strings.Builder
	end := 0.0
	for i, g := range r.Glyphs {
		if i > 0 && g.X-end > g.Size*0.2 && !strings.HasPrefix(g.S, " ") && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		end = g.X + g.W
	}
	return strings.TrimRight(b.String(), " ")
}

// layoutRows renders rows top to bottom. A vertical gap larger than 1.8 line
// heights becomes a blank line, which the structure parser reads as isolation.
func layoutRows(rows []textRow) string {
	var b strings.Builder
	for i, r := range rows {
		line := r.text()
		if i > 0 {
			b.WriteByte('\n')
			prev := rows[i-1]
			size := prev.Size
			if size <= 0 {
				size = 10
			}
			if abs(prev.Y-r.Y) > size*1.8 {
				b.WriteByte('\n')
			}
		}
		b.WriteString(line)
	}
	return b.String()
}

func sameLineTolerance(size float64) float64 {
	if size <= 0 {
		return 2
	}
	return size * 0.5
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
