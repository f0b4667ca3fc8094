package term

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
)

const (
	kittyEscStart = "\x1b_G"
	kittyEscEnd   = "\x1b\\"

	// The kitty protocol requires chunked payloads.
	kittyChunkSize = 4096
)

// KittyImage writes m as an immediately displayed kitty graphics
// image, chunked base64 PNG.
func KittyImage(w io.Writer, m image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := i + kittyChunkSize
		if end > len(encoded) {
			end = len(encoded)
		}
		more := 0
		if end < len(encoded) {
			more = 1
		}

		var control string
		if i == 0 {
			// a=T: transmit and display, f=100: PNG, q=2: quiet.
			control = fmt.Sprintf("a=T,f=100,q=2,m=%d;", more)
		} else {
			control = fmt.Sprintf("m=%d;", more)
		}
		if _, err := io.WriteString(w, kittyEscStart+control+encoded[i:end]+kittyEscEnd); err != nil {
			return err
		}
	}
	return nil
}
