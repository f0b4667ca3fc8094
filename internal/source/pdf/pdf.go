// Package pdf renders document pages through pdftoppm. Pages map to
// frames, so the frame offset and count select a page range.
package pdf

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
	"strconv"
	"time"

	filetype "gopkg.in/h2non/filetype.v1"

	"github.com/termcat/termcat/internal/source"
)

const decoderName = "pdf"

var convertPath = "pdftoppm"

func Available() bool {
	_, err := exec.LookPath(convertPath)
	return err == nil
}

type Source struct {
	filename   string
	origWidth  int
	origHeight int
	pages      []image.Image
}

func New(filename string) source.Source {
	return &Source{filename: filename}
}

func (s *Source) Filename() string { return s.filename }

func (s *Source) LoadAndScale(opts source.DisplayOptions, frameOffset, frameCount int) error {
	if s.filename == "-" {
		return errors.New("pdf rendering needs a seekable file")
	}
	bs, err := source.ReadInput(s.filename)
	if err != nil {
		return err
	}
	if !filetype.Is(bs, "pdf") {
		return fmt.Errorf("%s: not a pdf", s.filename)
	}

	args := []string{"-png"}
	if frameOffset > 0 {
		args = append(args, "-f", strconv.Itoa(frameOffset+1))
	}
	if frameCount > 0 {
		args = append(args, "-l", strconv.Itoa(frameOffset+frameCount))
	}
	args = append(args, s.filename)

	out, err := exec.Command(convertPath, args...).Output()
	if err != nil {
		return err
	}

	// pdftoppm writes the pages as concatenated PNG streams.
	br := bufio.NewReader(bytes.NewReader(out))
	for {
		img, err := png.Decode(br)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if len(s.pages) > 0 {
				break
			}
			return err
		}
		if len(s.pages) == 0 {
			b := img.Bounds()
			s.origWidth, s.origHeight = b.Dx(), b.Dy()
		}
		scaled, _ := source.ScaleToOptions(img, opts)
		s.pages = append(s.pages, scaled)
	}
	if len(s.pages) == 0 {
		return fmt.Errorf("%s: no pages rendered", s.filename)
	}
	return nil
}

func (s *Source) SendFrames(ctx context.Context, duration time.Duration, loops int, sink source.SinkFunc) error {
	for _, page := range s.pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink(page, 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) FormatTitle(tmpl string) string {
	return source.FormatFromParameters(tmpl, s.filename, s.origWidth, s.origHeight, decoderName)
}
