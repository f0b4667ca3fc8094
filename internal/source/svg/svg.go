// Package svg renders vector graphics through rsvg-convert. The first
// render happens at the document's natural size to learn its
// dimensions; if scaling is needed a second render at the target size
// keeps the output crisp instead of resampling raster pixels.
package svg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"time"

	"github.com/termcat/termcat/internal/source"
)

const decoderName = "svg"

var convertPath = "rsvg-convert"

func Available() bool {
	_, err := exec.LookPath(convertPath)
	return err == nil
}

type Source struct {
	filename   string
	origWidth  int
	origHeight int
	frame      image.Image
}

func New(filename string) source.Source {
	return &Source{filename: filename}
}

func (s *Source) Filename() string { return s.filename }

func (s *Source) LoadAndScale(opts source.DisplayOptions, frameOffset, frameCount int) error {
	bs, err := source.ReadInput(s.filename)
	if err != nil {
		return err
	}
	if !bytes.Contains(bytes.ToLower(head(bs, 1024)), []byte("<svg")) {
		return fmt.Errorf("%s: not a svg", s.filename)
	}

	img, err := render(bs)
	if err != nil {
		return err
	}
	b := img.Bounds()
	s.origWidth, s.origHeight = b.Dx(), b.Dy()

	res := source.ScaleToFitDisplay(s.origWidth, s.origHeight, opts, false)
	if res.NeedsScale {
		// Re-render at target size; fall back to resampling the
		// natural size render if that fails.
		if scaled, err := render(bs, "--width", strconv.Itoa(res.Width),
			"--height", strconv.Itoa(res.Height)); err == nil {
			s.frame = scaled
			return nil
		}
		s.frame, _ = source.ScaleToOptions(img, opts)
		return nil
	}
	s.frame = img
	return nil
}

func render(bs []byte, args ...string) (image.Image, error) {
	c := exec.Command(convertPath, append([]string{"-f", "png"}, args...)...)
	c.Stdin = bytes.NewReader(bs)
	out, err := c.Output()
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(out))
}

func (s *Source) SendFrames(ctx context.Context, duration time.Duration, loops int, sink source.SinkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return sink(s.frame, 0)
}

func (s *Source) FormatTitle(tmpl string) string {
	return source.FormatFromParameters(tmpl, s.filename, s.origWidth, s.origHeight, decoderName)
}

func head(bs []byte, n int) []byte {
	if len(bs) > n {
		return bs[:n]
	}
	return bs
}
