package source

import (
	"bytes"
	"encoding/binary"
	"os"
	"strings"
)

const pngSignatureLen = 8

// apngScanLimit bounds the chunk header scan; the acTL chunk of an
// animated PNG sits near the start of the file.
const apngScanLimit = 1024

// LooksLikeAPNG reports whether filename is an animated PNG. Only files
// with a .png or .apng suffix are considered, and only the first KiB is
// inspected. This is a best-effort heuristic, not a validating PNG
// parser; malformed files report false.
func LooksLikeAPNG(filename string) bool {
	for _, ending := range []string{".png", ".apng"} {
		if hasSuffixFold(filename, ending) && hasAPNGChunk(filename) {
			return true
		}
	}
	return false
}

// hasAPNGChunk walks PNG chunk headers looking for acTL. A chunk header
// is a 4-byte big-endian data length followed by the 4-byte chunk type;
// the next header follows after data plus CRC.
func hasAPNGChunk(filename string) bool {
	f, err := os.Open(filename)
	if err != nil {
		return false
	}
	defer f.Close()

	var buf [8]byte
	pos := int64(pngSignatureLen)
	for pos < apngScanLimit {
		if n, err := f.ReadAt(buf[:], pos); err != nil || n != len(buf) {
			return false // best effort
		}
		if bytes.Equal(buf[4:], []byte("acTL")) {
			return true
		}
		// Data length; add the length field, CRC and next chunk type.
		pos += int64(binary.BigEndian.Uint32(buf[:4])) + 12
	}
	return false
}

// hasSuffixFold is a locale-independent ASCII case-insensitive suffix
// match.
func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
