// Package jpeg is the JPEG fast path backend. JPEG is by far the most
// common format in the wild, so it is probed before the general raster
// decoders.
package jpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	stdjpeg "image/jpeg"
	"time"

	filetype "gopkg.in/h2non/filetype.v1"

	"github.com/termcat/termcat/internal/source"
)

const decoderName = "jpeg"

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
	if !filetype.Is(bs, "jpg") {
		return fmt.Errorf("%s: not a jpeg", s.filename)
	}

	img, err := stdjpeg.Decode(bytes.NewReader(bs))
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
