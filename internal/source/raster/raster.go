// Package raster is the general raster decoder, tried after the format
// specific fast paths. It handles everything the Go image registry
// knows about (png, gif, bmp, tiff, webp, jpeg as a late fallback) and
// plays GIF animations frame by frame.
package raster

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"image/gif"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/termcat/termcat/internal/source"
)

type frame struct {
	image image.Image
	delay time.Duration
}

type Source struct {
	filename   string
	decoder    string
	origWidth  int
	origHeight int
	frames     []frame
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

	if bytes.HasPrefix(bs, []byte("GIF8")) {
		return s.loadGIF(bs, opts, frameOffset, frameCount)
	}

	img, format, err := image.Decode(bytes.NewReader(bs))
	if err != nil {
		return err
	}
	b := img.Bounds()
	s.origWidth, s.origHeight = b.Dx(), b.Dy()
	s.decoder = format
	scaled, _ := source.ScaleToOptions(img, opts)
	s.frames = []frame{{image: scaled}}
	return nil
}

// loadGIF composes the animation into full frames, honoring frame
// disposal, then scales each composed frame.
func (s *Source) loadGIF(bs []byte, opts source.DisplayOptions, frameOffset, frameCount int) error {
	g, err := gif.DecodeAll(bytes.NewReader(bs))
	if err != nil {
		return err
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}
	s.origWidth, s.origHeight = width, height
	s.decoder = "gif"

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, part := range g.Image {
		var backup *image.RGBA
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
			backup = cloneRGBA(canvas)
		}
		draw.Draw(canvas, part.Bounds(), part, part.Bounds().Min, draw.Over)

		var delay time.Duration
		if i < len(g.Delay) {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		scaled, _ := source.ScaleToOptions(cloneRGBA(canvas), opts)
		s.frames = append(s.frames, frame{image: scaled, delay: delay})

		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(canvas, part.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				if backup != nil {
					canvas = backup
				}
			}
		}
	}

	if frameOffset > 0 {
		if frameOffset >= len(s.frames) {
			frameOffset = len(s.frames) - 1
		}
		s.frames = s.frames[frameOffset:]
	}
	if frameCount > 0 && frameCount < len(s.frames) {
		s.frames = s.frames[:frameCount]
	}
	return nil
}

func (s *Source) SendFrames(ctx context.Context, duration time.Duration, loops int, sink source.SinkFunc) error {
	if len(s.frames) == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return sink(s.frames[0].image, 0)
	}

	start := time.Now()
	for loop := 0; loops < 0 || loop < loops; loop++ {
		for _, f := range s.frames {
			if err := ctx.Err(); err != nil {
				return err
			}
			if duration > 0 && time.Since(start) >= duration {
				return nil
			}
			if err := sink(f.image, f.delay); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Source) FormatTitle(tmpl string) string {
	return source.FormatFromParameters(tmpl, s.filename, s.origWidth, s.origHeight, s.decoder)
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
