// Package term queries terminal geometry and writes images using
// whichever graphics protocol the terminal supports.
package term

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// Protocol is a way of getting pixels onto the terminal.
type Protocol int

const (
	// Halfblock works everywhere a truecolor escape does.
	Halfblock Protocol = iota
	ITerm2
	Kitty
)

func (p Protocol) String() string {
	switch p {
	case ITerm2:
		return "iterm2"
	case Kitty:
		return "kitty"
	}
	return "halfblock"
}

// Resolution is the terminal geometry in cells and pixels. Pixel sizes
// are derived from the reported cell size, falling back to a common
// 8x16 cell when the terminal doesn't report one.
type Resolution struct {
	Cols       int
	Rows       int
	Width      int // pixels
	Height     int // pixels
	CellWidth  int // pixels per cell
	CellHeight int // pixels per cell
}

// PixelResolution queries f (a tty) for its geometry.
func PixelResolution(f *os.File) (Resolution, error) {
	cols, rows, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return Resolution{}, err
	}
	cw, ch, ok := cellSize(f)
	if !ok {
		cw, ch, ok = reportCellSize(f)
	}
	if !ok {
		cw, ch = 8, 16
	}
	return Resolution{
		Cols:       cols,
		Rows:       rows,
		Width:      cols * cw,
		Height:     rows * ch,
		CellWidth:  cw,
		CellHeight: ch,
	}, nil
}

// DetectProtocol picks the best protocol the terminal advertises
// through its environment. TERMCAT_PROTOCOL overrides detection.
func DetectProtocol() Protocol {
	switch os.Getenv("TERMCAT_PROTOCOL") {
	case "kitty":
		return Kitty
	case "iterm2":
		return ITerm2
	case "halfblock":
		return Halfblock
	}

	if isKitty() {
		return Kitty
	}
	if os.Getenv("TERM_PROGRAM") == "iTerm.app" {
		return ITerm2
	}
	return Halfblock
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	if os.Getenv("TERM") == "xterm-kitty" {
		return true
	}
	// WezTerm and Ghostty speak the kitty graphics protocol too.
	if os.Getenv("TERM_PROGRAM") == "WezTerm" {
		return true
	}
	if os.Getenv("GHOSTTY_RESOURCES_DIR") != "" {
		return true
	}
	return strings.Contains(os.Getenv("TERM"), "kitty")
}
