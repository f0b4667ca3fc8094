package pdf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termcat/termcat/internal/source"
	"github.com/termcat/termcat/internal/source/pdf"
)

func TestDeclinesStdin(t *testing.T) {
	s := pdf.New("-")
	assert.Error(t, s.LoadAndScale(source.DisplayOptions{Width: 10, Height: 10, WidthStretch: 1}, 0, 0))
}

func TestDeclinesNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	s := pdf.New(path)
	assert.Error(t, s.LoadAndScale(source.DisplayOptions{Width: 10, Height: 10, WidthStretch: 1}, 0, 0))
}
