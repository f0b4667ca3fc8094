// Package magick is the wide-coverage fallback that shells out to
// GraphicsMagick or ImageMagick for raster formats the built-in
// decoders don't know.
package magick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"time"

	"github.com/termcat/termcat/internal/source"
)

const decoderName = "magick"

// Tried in order; graphicsmagick first as it tends to be faster.
var convertArgs = [][]string{
	{"gm", "convert"},
	{"magick"},
	{"convert"},
}

func findConvert() ([]string, bool) {
	for _, args := range convertArgs {
		if _, err := exec.LookPath(args[0]); err == nil {
			return args, true
		}
	}
	return nil, false
}

func Available() bool {
	_, ok := findConvert()
	return ok
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
	if s.filename == "-" {
		return errors.New("magick conversion needs a seekable file")
	}
	base, ok := findConvert()
	if !ok {
		return errors.New("no graphicsmagick or imagemagick found")
	}

	// First frame/page only; animations are the video backend's job.
	args := append(base[1:], fmt.Sprintf("%s[0]", s.filename), "png:-")
	out, err := exec.Command(base[0], args...).Output()
	if err != nil {
		return err
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return err
	}
	b := img.Bounds()
	s.origWidth, s.origHeight = b.Dx(), b.Dy()
	s.frame, _ = source.ScaleToOptions(img, opts)
	return nil
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
