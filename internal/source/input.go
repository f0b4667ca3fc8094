package source

import (
	"image"
	"io"
	"os"

	"github.com/nfnt/resize"
)

// ReadInput returns the content of filename, with "-" meaning stdin.
// Note stdin can only be consumed once, so the first backend probing it
// wins; that is why Create hints at the video-only flag for piped
// video.
func ReadInput(filename string) ([]byte, error) {
	if filename == "-" || filename == "/dev/stdin" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filename)
}

// ScaleToOptions resizes img to whatever ScaleToFitDisplay decides for
// the given options.
func ScaleToOptions(img image.Image, opts DisplayOptions) (image.Image, ScaleResult) {
	b := img.Bounds()
	res := ScaleToFitDisplay(b.Dx(), b.Dy(), opts, false)
	if !res.NeedsScale {
		return img, res
	}
	return resize.Resize(uint(res.Width), uint(res.Height), img, resize.Lanczos3), res
}
