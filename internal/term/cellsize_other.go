//go:build !unix

package term

import "os"

func cellSize(f *os.File) (cellW, cellH int, ok bool) {
	return 0, 0, false
}
