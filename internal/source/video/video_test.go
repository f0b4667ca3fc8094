package video_test

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wader/osleaktest"

	"github.com/termcat/termcat/internal/ffmpeg"
	"github.com/termcat/termcat/internal/source"
	"github.com/termcat/termcat/internal/source/video"
)

func leakChecks(t *testing.T) func() {
	leakFn := leaktest.Check(t)
	osLeakFn := osleaktest.Check(t)
	return func() {
		leakFn()
		osLeakFn()
	}
}

// generateVideo renders one second of testsrc into a nut container and
// writes it to a temp file.
func generateVideo(t *testing.T) string {
	t.Helper()
	data := &bytes.Buffer{}
	c := &ffmpeg.Cmd{
		Context: context.Background(),
		Input: ffmpeg.Input{
			Format: "lavfi",
			File:   "testsrc=duration=1:size=64x48:rate=10",
		},
		Output: ffmpeg.Output{File: data, Format: "nut", Codec: "png"},
	}
	require.NoError(t, c.Run())

	path := filepath.Join(t.TempDir(), "clip.nut")
	require.NoError(t, os.WriteFile(path, data.Bytes(), 0o644))
	return path
}

func TestLoadAndSendFrames(t *testing.T) {
	if !video.Available() {
		t.Skip("ffmpeg not found")
	}
	defer leakChecks(t)()

	path := generateVideo(t)
	s := video.New(path)
	require.NoError(t, s.LoadAndScale(source.DisplayOptions{Width: 32, Height: 32, WidthStretch: 1}, 0, 0))

	assert.Equal(t, "ffmpeg 64x48", s.FormatTitle("%D %wx%h"))

	var frames []image.Image
	var delays []time.Duration
	err := s.SendFrames(context.Background(), 0, 1, func(frame image.Image, delay time.Duration) error {
		frames = append(frames, frame)
		delays = append(delays, delay)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, frames, 10)
	assert.Equal(t, 32, frames[0].Bounds().Dx())
	assert.Equal(t, 24, frames[0].Bounds().Dy())
	assert.Equal(t, 100*time.Millisecond, delays[0])
}

func TestFrameOffsetAndCount(t *testing.T) {
	if !video.Available() {
		t.Skip("ffmpeg not found")
	}
	defer leakChecks(t)()

	path := generateVideo(t)
	s := video.New(path)
	require.NoError(t, s.LoadAndScale(source.DisplayOptions{Width: 32, Height: 32, WidthStretch: 1}, 4, 3))

	frames := 0
	err := s.SendFrames(context.Background(), 0, 1, func(image.Image, time.Duration) error {
		frames++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
}

func TestSendFramesCancel(t *testing.T) {
	if !video.Available() {
		t.Skip("ffmpeg not found")
	}
	defer leakChecks(t)()

	path := generateVideo(t)
	s := video.New(path)
	require.NoError(t, s.LoadAndScale(source.DisplayOptions{Width: 32, Height: 32, WidthStretch: 1}, 0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	err := s.SendFrames(ctx, 0, -1, func(image.Image, time.Duration) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeclinesNonVideo(t *testing.T) {
	if !video.Available() {
		t.Skip("ffmpeg not found")
	}
	defer leakChecks(t)()

	path := filepath.Join(t.TempDir(), "junk.bin")
	require.NoError(t, os.WriteFile(path, []byte("not media"), 0o644))

	s := video.New(path)
	assert.Error(t, s.LoadAndScale(source.DisplayOptions{Width: 32, Height: 32, WidthStretch: 1}, 0, 0))
}
