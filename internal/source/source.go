// Package source selects and drives image decoding backends. Backends
// are tried in a fixed priority order against a file of unknown format;
// the first one whose LoadAndScale succeeds wins. The geometry of the
// decoded image is normalized with ScaleToFitDisplay.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	filetype "gopkg.in/h2non/filetype.v1"
)

// SinkFunc receives decoded frames. delay is how long the frame should
// stay up before the next one; 0 for still images.
type SinkFunc func(frame image.Image, delay time.Duration) error

// Source is one loaded image or video bound to a filename.
//
// LoadAndScale is the admission test: an error means "not my format"
// and the instance is discarded. After success the source is immutable
// metadata plus a repeatable frame emission capability.
//
// SendFrames polls ctx between frames; that is the only cancellation
// mechanism, emission stops within one frame of ctx being done.
type Source interface {
	Filename() string
	LoadAndScale(opts DisplayOptions, frameOffset, frameCount int) error
	SendFrames(ctx context.Context, duration time.Duration, loops int, sink SinkFunc) error
	FormatTitle(template string) string
}

// Factory describes one backend candidate. Absent backends (Available
// reports false) are skipped, not errors.
type Factory struct {
	Name      string
	Video     bool
	Available func() bool
	New       func(filename string) Source
}

func (f Factory) available() bool {
	return f.Available == nil || f.Available()
}

// Create tries factories in order against filename and returns the
// first fully loaded source. Each candidate's LoadAndScale is the sole
// admission test; failures are expected probing noise and not surfaced
// individually. On total failure the returned error names the file and
// a specific, actionable cause.
func Create(filename string, factories []Factory, opts DisplayOptions,
	frameOffset, frameCount int, attemptImage, attemptVideo bool) (Source, error) {
	try := func(f Factory) Source {
		s := f.New(filename)
		if err := s.LoadAndScale(opts, frameOffset, frameCount); err != nil {
			return nil
		}
		return s
	}

	videoAvailable := false
	for _, f := range factories {
		if f.Video && f.available() {
			videoAvailable = true
			break
		}
	}

	// Animated PNGs would come out as a single still from the image
	// backends; let the video decoder have them first.
	videoTried := false
	if attemptVideo && videoAvailable && LooksLikeAPNG(filename) {
		for _, f := range factories {
			if !f.Video || !f.available() {
				continue
			}
			videoTried = true
			if s := try(f); s != nil {
				return s, nil
			}
		}
	}

	for _, f := range factories {
		if f.Video || !f.available() {
			continue
		}
		if !attemptImage {
			continue
		}
		if s := try(f); s != nil {
			return s, nil
		}
	}

	if attemptVideo && !videoTried {
		for _, f := range factories {
			if !f.Video || !f.available() {
				continue
			}
			if s := try(f); s != nil {
				return s, nil
			}
		}
	}

	return nil, createError(filename, videoAvailable)
}

// createError classifies why no backend took the file. "-" is the
// stdin sentinel and can not be stat'ed.
func createError(filename string, videoAvailable bool) error {
	var msg string
	if filename != "-" {
		if fi, err := os.Stat(filename); err != nil {
			var perr *os.PathError
			if errors.As(err, &perr) {
				msg = fmt.Sprintf("%s: %s", filename, perr.Err)
			} else {
				msg = fmt.Sprintf("%s: %s", filename, err)
			}
		} else if fi.IsDir() {
			msg = filename + ": is a directory"
		} else if f, err := os.Open(filename); err != nil {
			var perr *os.PathError
			if errors.As(err, &perr) {
				msg = fmt.Sprintf("%s: %s", filename, perr.Err)
			} else {
				msg = fmt.Sprintf("%s: %s", filename, err)
			}
		} else {
			f.Close()
		}
	}

	if videoAvailable && (filename == "-" || filename == "/dev/stdin") {
		return errors.New("if this is a video on stdin, use --video to skip image probing")
	}

	if msg == "" && !videoAvailable {
		if hasVideoSuffix(filename) {
			msg = filename + ": looks like a video file, but no ffmpeg found to decode it"
		} else if t, err := filetype.MatchFile(filename); err == nil && t.MIME.Type == "video" {
			msg = fmt.Sprintf("%s: looks like %s video, but no ffmpeg found to decode it",
				filename, t.Extension)
		}
	}

	if msg == "" {
		msg = filename + ": no decoder recognized this file"
	}
	return errors.New(msg)
}

var videoSuffixes = []string{".mov", ".mp4", ".mkv", ".avi", ".wmv", ".webm"}

func hasVideoSuffix(filename string) bool {
	for _, suffix := range videoSuffixes {
		if hasSuffixFold(filename, suffix) {
			return true
		}
	}
	return false
}
