package term

import (
	"fmt"
	"image"
	"io"
	"strings"
)

// Quadrant glyphs indexed by a 4-bit mask of which quarters show the
// foreground color: bit 0 top-left, 1 top-right, 2 bottom-left, 3
// bottom-right.
var quadrants = [16]rune{
	' ', '▘', '▝', '▀',
	'▖', '▌', '▞', '▛',
	'▗', '▚', '▐', '▜',
	'▄', '▙', '▟', '█',
}

// QuarterblockImage writes m as ANSI art with 2x2 pixels per cell.
// Each block is quantized to its two most distant colors and rendered
// with the quadrant glyph matching the partition. The caller is
// expected to have scaled m already (cell quantum 2x2).
func QuarterblockImage(w io.Writer, m image.Image) error {
	b := m.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			var px [4][3]int
			for i := 0; i < 4; i++ {
				sx, sy := x+i%2, y+i/2
				if sx >= b.Max.X {
					sx = b.Max.X - 1
				}
				if sy >= b.Max.Y {
					sy = b.Max.Y - 1
				}
				r, g, bl := rgbAt(m, sx, sy)
				px[i] = [3]int{int(r), int(g), int(bl)}
			}

			// Pick the two most distant pixels as the color pair.
			ai, bi := 0, 0
			best := -1
			for i := 0; i < 4; i++ {
				for j := i + 1; j < 4; j++ {
					if d := colorDist(px[i], px[j]); d > best {
						best, ai, bi = d, i, j
					}
				}
			}

			var mask int
			var fg, bg [3]int
			var nfg, nbg int
			for i := 0; i < 4; i++ {
				if colorDist(px[i], px[ai]) <= colorDist(px[i], px[bi]) {
					mask |= 1 << i
					for c := 0; c < 3; c++ {
						fg[c] += px[i][c]
					}
					nfg++
				} else {
					for c := 0; c < 3; c++ {
						bg[c] += px[i][c]
					}
					nbg++
				}
			}
			for c := 0; c < 3; c++ {
				fg[c] /= nfg
				if nbg > 0 {
					bg[c] /= nbg
				}
			}

			fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm%c",
				bg[0], bg[1], bg[2], fg[0], fg[1], fg[2], quadrants[mask])
		}
		sb.WriteString("\x1b[0m\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func colorDist(a, b [3]int) int {
	d := 0
	for c := 0; c < 3; c++ {
		d += (a[c] - b[c]) * (a[c] - b[c])
	}
	return d
}
