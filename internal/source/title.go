package source

import (
	"strconv"
	"strings"
)

// FormatFromParameters expands a %-escaped title template in a single
// left-to-right scan.
//
//	%f  full filename
//	%b  basename of filename
//	%w  original width
//	%h  original height
//	%D  decoder name
//	%%  literal %
//
// Any other character after % passes through raw, as does a trailing
// lone %.
func FormatFromParameters(tmpl, filename string, origWidth, origHeight int, decoder string) string {
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' || i >= len(tmpl)-1 {
			sb.WriteByte(tmpl[i])
			continue
		}

		i++
		switch tmpl[i] {
		case 'f':
			sb.WriteString(filename)
		case 'b':
			sb.WriteString(basename(filename))
		case 'w':
			sb.WriteString(strconv.Itoa(origWidth))
		case 'h':
			sb.WriteString(strconv.Itoa(origHeight))
		case 'D':
			sb.WriteString(decoder)
		default:
			sb.WriteByte(tmpl[i])
		}
	}
	return sb.String()
}

// basename splits on the last / or \ so both unix and windows style
// paths work regardless of host OS.
func basename(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		return filename[i+1:]
	}
	return filename
}
