// Command termcat shows images and videos in the terminal.
package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/termcat/termcat/internal/config"
	"github.com/termcat/termcat/internal/source"
	"github.com/termcat/termcat/internal/source/all"
	"github.com/termcat/termcat/internal/source/video"
	"github.com/termcat/termcat/internal/term"
)

type flags struct {
	geometry       string
	upscale        bool
	upscaleInteger bool
	fillWidth      bool
	fillHeight     bool
	stretch        float32
	videoOnly      bool
	imageOnly      bool
	title          string
	loops          int
	duration       time.Duration
	frameOffset    int
	frameCount     int
	pixelation     string
	verbose        bool
	debug          bool
}

func parseFlags(cfg config.Config) flags {
	var f flags
	pflag.StringVarP(&f.geometry, "geometry", "g", "", "display size in cells as COLSxROWS (default: terminal size)")
	pflag.BoolVarP(&f.upscale, "upscale", "U", cfg.Upscale, "allow making images larger than the original")
	pflag.BoolVar(&f.upscaleInteger, "upscale-integer", cfg.UpscaleInteger, "restrict upscaling to integer multiples")
	pflag.BoolVarP(&f.fillWidth, "fill-width", "W", false, "fill width, overflowing height if needed")
	pflag.BoolVarP(&f.fillHeight, "fill-height", "H", false, "fill height, overflowing width if needed")
	pflag.Float32Var(&f.stretch, "stretch", float32(cfg.Stretch), "cell aspect correction factor")
	pflag.BoolVarP(&f.videoOnly, "video", "V", false, "only try video decoding, skip image probing")
	pflag.BoolVarP(&f.imageOnly, "image", "I", false, "only try image decoding")
	pflag.StringVarP(&f.title, "title", "t", cfg.Title, "title template (%f file, %b basename, %w width, %h height, %D decoder)")
	pflag.IntVar(&f.loops, "loops", cfg.Loops, "animation loops, -1 until interrupted")
	pflag.DurationVar(&f.duration, "duration", 0, "stop emitting frames after this long")
	pflag.IntVar(&f.frameOffset, "frame-offset", 0, "start at this frame or page")
	pflag.IntVar(&f.frameCount, "frame-count", 0, "show at most this many frames or pages")
	pflag.StringVarP(&f.pixelation, "pixelation", "p", cfg.Pixelation, "auto, halfblock, quarter, kitty or iterm2")
	pflag.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	pflag.BoolVarP(&f.debug, "debug", "d", false, "debug output")
	pflag.Parse()
	return f
}

func parseGeometry(s string) (cols, rows int, err error) {
	cs, rs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("geometry %q not COLSxROWS", s)
	}
	if cols, err = strconv.Atoi(cs); err != nil {
		return 0, 0, fmt.Errorf("geometry %q not COLSxROWS", s)
	}
	if rows, err = strconv.Atoi(rs); err != nil {
		return 0, 0, fmt.Errorf("geometry %q not COLSxROWS", s)
	}
	return cols, rows, nil
}

// displayOptions maps the terminal geometry and pixelation mode to the
// pixel space the scaler works in.
func displayOptions(f flags, res term.Resolution, protocol term.Protocol) source.DisplayOptions {
	opts := source.DisplayOptions{
		Upscale:        f.upscale || f.upscaleInteger,
		UpscaleInteger: f.upscaleInteger,
		FillWidth:      f.fillWidth,
		FillHeight:     f.fillHeight,
		WidthStretch:   f.stretch,
	}

	// Keep one row free for the prompt.
	rows := res.Rows - 1
	if rows < 1 {
		rows = 1
	}

	switch f.pixelation {
	case "quarter":
		opts.Width = res.Cols * 2
		opts.Height = rows * 2
		opts.CellXPx = 2
		opts.CellYPx = 2
	case "halfblock":
		opts.Width = res.Cols
		opts.Height = rows * 2
		opts.CellXPx = 1
		opts.CellYPx = 2
	default:
		if protocol == term.Halfblock {
			opts.Width = res.Cols
			opts.Height = rows * 2
			opts.CellXPx = 1
			opts.CellYPx = 2
			break
		}
		opts.Width = res.Cols * res.CellWidth
		opts.Height = rows * res.CellHeight
		opts.CellXPx = res.CellWidth
		opts.CellYPx = res.CellHeight
	}
	return opts
}

func emitter(f flags, protocol term.Protocol) (emit func(m image.Image) error, halfblock bool) {
	halfblock = f.pixelation == "halfblock" || f.pixelation == "quarter" ||
		(f.pixelation == "auto" && protocol == term.Halfblock)
	switch {
	case f.pixelation == "quarter":
		return func(m image.Image) error { return term.QuarterblockImage(os.Stdout, m) }, true
	case halfblock:
		return func(m image.Image) error { return term.HalfblockImage(os.Stdout, m) }, true
	case protocol == term.Kitty:
		return func(m image.Image) error {
			err := term.KittyImage(os.Stdout, m)
			fmt.Println()
			return err
		}, false
	default:
		return func(m image.Image) error {
			err := term.ITerm2Image(os.Stdout, m)
			fmt.Println()
			return err
		}, false
	}
}

func show(ctx context.Context, path string, f flags, opts source.DisplayOptions,
	emit func(image.Image) error, halfblock bool) error {
	src, err := source.Create(path, all.Factories, opts,
		f.frameOffset, f.frameCount, !f.videoOnly, !f.imageOnly)
	if err != nil {
		return err
	}

	if f.title != "" {
		fmt.Println(src.FormatTitle(f.title))
	}

	var lastHeight int
	return src.SendFrames(ctx, f.duration, f.loops, func(m image.Image, delay time.Duration) error {
		// Overwrite the previous animation frame in halfblock mode
		// instead of scrolling.
		if halfblock && lastHeight > 0 {
			fmt.Printf("\x1b[%dA", (lastHeight+1)/2)
		}
		if err := emit(m); err != nil {
			return err
		}
		if halfblock {
			lastHeight = m.Bounds().Dy()
		}

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		return nil
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	f := parseFlags(cfg)

	if pflag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: termcat [flags] file...")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := term.PixelResolution(os.Stdout)
	if err != nil {
		// Not a tty; assume a common size so piping still works.
		res = term.Resolution{Cols: 80, Rows: 24, Width: 640, Height: 384, CellWidth: 8, CellHeight: 16}
	}
	if f.geometry != "" {
		cols, rows, err := parseGeometry(f.geometry)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		res.Cols, res.Rows = cols, rows
		res.Width, res.Height = cols*res.CellWidth, rows*res.CellHeight
	}

	if f.debug {
		video.DebugLog = log.New(os.Stderr, "debug> ", 0)
	}

	protocol := term.DetectProtocol()
	opts := displayOptions(f, res, protocol)
	emit, halfblock := emitter(f, protocol)

	if f.verbose {
		fmt.Fprintf(os.Stderr, "%s: %dx%d cells, %dx%d px available\n",
			protocol, res.Cols, res.Rows, opts.Width, opts.Height)
	}

	exitCode := 0
	for _, path := range pflag.Args() {
		if err := show(ctx, path, f, opts, emit, halfblock); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
