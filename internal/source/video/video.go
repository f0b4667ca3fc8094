// Package video decodes anything ffmpeg can demux, streaming frames
// through an image2pipe png stream. It sits last in the registry so
// still images get picked up by the cheaper decoders first.
package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"strconv"
	"time"

	"github.com/termcat/termcat/internal/ffmpeg"
	"github.com/termcat/termcat/internal/source"
)

const decoderName = "ffmpeg"

// DebugLog receives the ffmpeg and ffprobe command lines.
var DebugLog ffmpeg.Printer = ffmpeg.NopPrinter{}

func Available() bool {
	return ffmpeg.Available()
}

type Source struct {
	filename string

	// Piped input is spooled so it can be probed and then decoded.
	spooled []byte

	origWidth    int
	origHeight   int
	targetWidth  int
	targetHeight int
	frameRate    float64
	frameOffset  int
	frameCount   int
	probed       ffmpeg.ProbeResult
}

func New(filename string) source.Source {
	return &Source{filename: filename}
}

func (s *Source) Filename() string { return s.filename }

func (s *Source) input() ffmpeg.Input {
	if s.spooled != nil {
		return ffmpeg.Input{File: bytes.NewReader(s.spooled)}
	}
	return ffmpeg.Input{File: s.filename}
}

func (s *Source) LoadAndScale(opts source.DisplayOptions, frameOffset, frameCount int) error {
	if s.filename == "-" || s.filename == "/dev/stdin" {
		bs, err := source.ReadInput(s.filename)
		if err != nil {
			return err
		}
		s.spooled = bs
	}

	probe := ffmpeg.ProbeCmd{Input: s.input(), DebugLog: DebugLog}
	if err := probe.Run(); err != nil {
		return err
	}
	stream, ok := probe.Result.FirstStreamOfType("video")
	if !ok {
		return fmt.Errorf("%s: no video stream", s.filename)
	}
	if stream.Width == 0 || stream.Height == 0 {
		return fmt.Errorf("%s: no usable dimensions", s.filename)
	}
	s.probed = probe.Result

	codedW, codedH := int(stream.Width), int(stream.Height)
	if stream.Rotated() {
		// ffmpeg applies the display matrix on decode, so fit the
		// coded frame against swapped display bounds and swap the
		// result back into display orientation.
		res := source.ScaleToFitDisplay(codedW, codedH, opts, true)
		s.origWidth, s.origHeight = codedH, codedW
		s.targetWidth, s.targetHeight = res.Height, res.Width
	} else {
		res := source.ScaleToFitDisplay(codedW, codedH, opts, false)
		s.origWidth, s.origHeight = codedW, codedH
		s.targetWidth, s.targetHeight = res.Width, res.Height
	}

	s.frameRate = stream.FrameRate()
	if s.frameRate <= 0 {
		s.frameRate = 25
	}
	s.frameOffset = frameOffset
	s.frameCount = frameCount
	return nil
}

func (s *Source) SendFrames(ctx context.Context, duration time.Duration, loops int, sink source.SinkFunc) error {
	delay := time.Duration(float64(time.Second) / s.frameRate)
	start := time.Now()

	for loop := 0; loops < 0 || loop < loops; loop++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if duration > 0 && time.Since(start) >= duration {
			return nil
		}
		if err := s.decodeOnce(ctx, duration, start, delay, sink); err != nil {
			return err
		}
		if loops < 0 && duration <= 0 && s.spooled == nil && s.probed.Duration() == 0 {
			// Endless input (e.g. a device or stream) already ran to
			// ctx cancellation or EOF; don't spin restarting it.
			return nil
		}
	}
	return nil
}

// decodeOnce runs one ffmpeg pass over the input, handing decoded
// frames to the sink. ctx is polled between frames.
func (s *Source) decodeOnce(ctx context.Context, duration time.Duration, start time.Time,
	delay time.Duration, sink source.SinkFunc) error {
	var filter ffmpeg.FilterChain
	if s.frameOffset > 0 {
		filter = append(filter, ffmpeg.Filter{
			Name:    "select",
			Options: map[string]string{"expr": fmt.Sprintf("gte(n,%d)", s.frameOffset)},
		})
	}
	filter = append(filter, ffmpeg.Filter{
		Name: "scale",
		Options: map[string]string{
			"w": strconv.Itoa(s.targetWidth),
			"h": strconv.Itoa(s.targetHeight),
		},
	})

	pr, pw := io.Pipe()
	cmd := ffmpeg.Cmd{
		Context:  ctx,
		Input:    s.input(),
		Filter:   filter,
		DebugLog: DebugLog,
		Output: ffmpeg.Output{
			File:   pw,
			Format: "image2pipe",
			Codec:  "png",
		},
	}
	if s.frameCount > 0 {
		cmd.Output.Flags = []string{"-frames:v", strconv.Itoa(s.frameCount)}
	}

	runErrCh := make(chan error, 1)
	go func() {
		err := cmd.Run()
		pw.CloseWithError(err)
		runErrCh <- err
	}()

	br := bufio.NewReader(pr)
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			pr.CloseWithError(err)
			<-runErrCh
			return err
		}
		if duration > 0 && time.Since(start) >= duration {
			pr.Close()
			<-runErrCh
			return nil
		}

		img, err := png.Decode(br)
		if err != nil {
			pr.Close()
			runErr := <-runErrCh
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if frames == 0 && runErr != nil {
					return runErr
				}
				return nil
			}
			return err
		}
		frames++
		if err := sink(img, delay); err != nil {
			pr.Close()
			<-runErrCh
			return err
		}
	}
}

func (s *Source) FormatTitle(tmpl string) string {
	return source.FormatFromParameters(tmpl, s.filename, s.origWidth, s.origHeight, decoderName)
}
