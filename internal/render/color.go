package render

import (
	"image/color"
	"strconv"
	"strings"
)

// ParseColor reads a CSS hex color (#rgb, #rrggbb or #rrggbbaa). Anything
// else is opaque white.
func ParseColor(s string) color.RGBA {
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return white
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return white
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}
