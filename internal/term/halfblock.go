package term

import (
	"fmt"
	"image"
	"io"
	"strings"
)

// HalfblockImage writes m as ANSI art using the lower half block (▄):
// for every two pixel rows the background carries the top pixel and
// the foreground the bottom one. The caller is expected to have scaled
// m already (cell quantum 1x2).
func HalfblockImage(w io.Writer, m image.Image) error {
	b := m.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			tr, tg, tb := rgbAt(m, x, y)
			var br, bg, bb uint8
			if y+1 < b.Max.Y {
				br, bg, bb = rgbAt(m, x, y+1)
			}
			fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm▄",
				tr, tg, tb, br, bg, bb)
		}
		sb.WriteString("\x1b[0m\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func rgbAt(m image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := m.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
