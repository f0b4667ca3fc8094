package term

import (
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// reportCellSize asks an iTerm2 compatible terminal for its cell size
// in pixels. Only attempted when the terminal identifies as iTerm2,
// since other terminals would leave the query unanswered and the read
// hanging.
func reportCellSize(f *os.File) (cellW, cellH int, ok bool) {
	if os.Getenv("TERM_PROGRAM") != "iTerm.app" {
		return 0, 0, false
	}

	old, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return 0, 0, false
	}
	defer term.Restore(int(f.Fd()), old)

	if _, err := f.Write([]byte("\x1b]1337;ReportCellSize\x07")); err != nil {
		return 0, 0, false
	}

	// Reply is "\x1b]1337;ReportCellSize=<height>;<width>[;<scale>]\x1b\\",
	// height before width.
	buf := make([]byte, 64)
	n, err := f.Read(buf)
	if err != nil {
		return 0, 0, false
	}
	s := string(buf[:n])

	const prefix = "ReportCellSize="
	start := strings.Index(s, prefix)
	stop := strings.Index(s, "\x1b\\")
	if start < 0 || stop < start {
		return 0, 0, false
	}
	parts := strings.Split(s[start+len(prefix):stop], ";")
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, _ := strconv.ParseFloat(parts[0], 64)
	w, _ := strconv.ParseFloat(parts[1], 64)
	scale := 1.0
	if len(parts) > 2 {
		if v, _ := strconv.ParseFloat(parts[2], 64); v > 0 {
			scale = v
		}
	}
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return int(w * scale), int(h * scale), true
}

// ITerm2Image writes m as an iTerm2 inline image.
func ITerm2Image(w io.Writer, m image.Image) error {
	if _, err := w.Write([]byte("\x1b]1337;File=inline=1:")); err != nil {
		return err
	}
	enc := base64.NewEncoder(base64.StdEncoding, w)
	if err := png.Encode(enc, m); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\x07")); err != nil {
		return err
	}
	return nil
}
