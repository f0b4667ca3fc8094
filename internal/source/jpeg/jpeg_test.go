package jpeg_test

import (
	"bytes"
	"context"
	"image"
	stdjpeg "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termcat/termcat/internal/source"
	"github.com/termcat/termcat/internal/source/jpeg"
)

func writeJPEG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	require.NoError(t, stdjpeg.Encode(&buf, img, nil))
	path := filepath.Join(t.TempDir(), "test.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadAndScale(t *testing.T) {
	path := writeJPEG(t, 30, 20)

	s := jpeg.New(path)
	require.NoError(t, s.LoadAndScale(source.DisplayOptions{Width: 15, Height: 15, WidthStretch: 1}, 0, 0))

	assert.Equal(t, path, s.Filename())
	assert.Equal(t, "jpeg 30x20", s.FormatTitle("%D %wx%h"))

	var got image.Image
	var gotDelay time.Duration
	err := s.SendFrames(context.Background(), 0, 1, func(frame image.Image, delay time.Duration) error {
		got, gotDelay = frame, delay
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 15, got.Bounds().Dx())
	assert.Equal(t, 10, got.Bounds().Dy())
	assert.Equal(t, time.Duration(0), gotDelay)
}

func TestDeclinesNonJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	path := filepath.Join(t.TempDir(), "not.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	s := jpeg.New(path)
	assert.Error(t, s.LoadAndScale(source.DisplayOptions{Width: 10, Height: 10, WidthStretch: 1}, 0, 0))
}

func TestSendFramesCanceled(t *testing.T) {
	s := jpeg.New(writeJPEG(t, 4, 4))
	require.NoError(t, s.LoadAndScale(source.DisplayOptions{Width: 10, Height: 10, WidthStretch: 1}, 0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.SendFrames(ctx, 0, 1, func(image.Image, time.Duration) error {
		t.Fatal("sink called after cancel")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
