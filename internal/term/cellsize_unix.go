//go:build unix

package term

import (
	"os"

	"golang.org/x/sys/unix"
)

// cellSize returns the cell dimensions in pixels by querying
// TIOCGWINSZ. ok is false if the terminal doesn't report pixel sizes.
func cellSize(f *os.File) (cellW, cellH int, ok bool) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return 0, 0, false
	}
	return int(ws.Xpixel) / int(ws.Col), int(ws.Ypixel) / int(ws.Row), true
}
