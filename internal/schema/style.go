package schema

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultColor = "#000000"

// NewStyle builds a theme style whose secondary colour is the primary colour
// lightened 10% towards white.
func NewStyle(primary string) *Style {
	if primary == "" {
		primary = defaultColor
	}
	return &Style{
		PrimaryColor:   primary,
		SecondaryColor: Lighten(primary, 0.1),
	}
}

// Lighten moves each RGB component of a #rrggbb colour towards 255 by amount.
// Malformed input is returned unchanged.
func Lighten(hex string, amount float64) string {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return hex
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return hex
	}
	lift := func(c uint64) uint64 {
		return c + uint64(float64(255-c)*amount)
	}
	r := lift(v >> 16 & 0xff)
	g := lift(v >> 8 & 0xff)
	b := lift(v & 0xff)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
