// Package all wires up every backend in its fixed probing order.
package all

import (
	"github.com/termcat/termcat/internal/source"
	"github.com/termcat/termcat/internal/source/jpeg"
	"github.com/termcat/termcat/internal/source/magick"
	"github.com/termcat/termcat/internal/source/pdf"
	"github.com/termcat/termcat/internal/source/raster"
	"github.com/termcat/termcat/internal/source/svg"
	"github.com/termcat/termcat/internal/source/video"
)

// Factories in priority order: cheap format specific probes first, the
// expensive catch-alls last.
var Factories = []source.Factory{
	{Name: "jpeg", New: jpeg.New},
	{Name: "svg", Available: svg.Available, New: svg.New},
	{Name: "pdf", Available: pdf.Available, New: pdf.New},
	{Name: "raster", New: raster.New},
	{Name: "magick", Available: magick.Available, New: magick.New},
	{Name: "video", Video: true, Available: video.Available, New: video.New},
}
