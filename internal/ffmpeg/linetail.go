package ffmpeg

import (
	"bytes"
	"strings"
)

// lineTail buffers the last n lines written to it. Used to keep the
// tail of ffmpeg's stderr around for error messages.
type lineTail struct {
	buf     bytes.Buffer
	current int
	lines   []string
}

func newLineTail(limit int) *lineTail {
	return &lineTail{lines: make([]string, limit)}
}

func (lt *lineTail) Write(p []byte) (n int, err error) {
	lt.buf.Write(p)
	b := lt.buf.Bytes()
	pos := 0
	for {
		i := bytes.IndexAny(b[pos:], "\n\r")
		if i < 0 {
			break
		}
		lt.addLine(string(b[pos : pos+i+1]))
		pos += i + 1
	}
	lt.buf.Reset()
	lt.buf.Write(b[pos:])
	return len(p), nil
}

// Close flushes any partial line left in the buffer.
func (lt *lineTail) Close() error {
	if lt.buf.Len() > 0 {
		lt.addLine(lt.buf.String())
	}
	lt.buf.Reset()
	return nil
}

func (lt *lineTail) addLine(line string) {
	lt.lines[lt.current] = line
	lt.current = (lt.current + 1) % len(lt.lines)
}

func (lt *lineTail) String() string {
	var ls []string
	for i := 0; i < len(lt.lines); i++ {
		ls = append(ls, lt.lines[(lt.current+i)%len(lt.lines)])
	}
	return strings.Join(ls, "")
}
