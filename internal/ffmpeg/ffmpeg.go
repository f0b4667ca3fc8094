// Package ffmpeg wraps the ffmpeg and ffprobe command line tools for
// probing media files and decoding video into a stream of raw frames.
package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"sort"
	"strings"
)

// FFmpegPath to ffmpeg binary. Will be used as name to exec.Command.
var FFmpegPath = "ffmpeg"

// FFprobePath to ffprobe binary. Will be used as name to exec.Command.
var FFprobePath = "ffprobe"

// Printer is something that printfs (used for debug logging)
type Printer interface {
	Printf(format string, v ...interface{})
}

// NopPrinter is discard printfer
type NopPrinter struct{}

// Printf nop
func (NopPrinter) Printf(format string, v ...interface{}) {}

// Available reports whether both binaries can be found.
func Available() bool {
	if _, err := exec.LookPath(FFmpegPath); err != nil {
		return false
	}
	_, err := exec.LookPath(FFprobePath)
	return err == nil
}

// Input is one media input, a path string or an io.Reader fed through
// stdin.
type Input struct {
	File   interface{} // string or io.Reader
	Format string
	Flags  []string
}

// Output is the single decoded output, always piped to a writer.
type Output struct {
	File   io.Writer
	Format string
	Codec  string
	Flags  []string
}

// Filter is one video filter with its options.
type Filter struct {
	Name    string
	Options map[string]string
}

// FilterChain is filters applied in sequence via -vf.
type FilterChain []Filter

var filterValueEscapeRe = regexp.MustCompile(`[,:]`)

func (fc FilterChain) String() string {
	var filters []string
	for _, f := range fc {
		opts := sortedOptions(f.Options, func(k, v string) string {
			return k + "=" + filterValueEscapeRe.ReplaceAllString(v, `\$0`)
		})
		s := f.Name
		if len(opts) > 0 {
			s += "=" + strings.Join(opts, ":")
		}
		filters = append(filters, s)
	}
	return strings.Join(filters, ",")
}

// sortedOptions keeps map-driven arguments in a stable order.
func sortedOptions(m map[string]string, fn func(k, v string) string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := make([]string, 0, len(m))
	for _, k := range keys {
		s = append(s, fn(k, m[k]))
	}
	return s
}

// Cmd is one ffmpeg decode run.
type Cmd struct {
	Flags  []string
	Input  Input
	Filter FilterChain
	Output Output

	Context             context.Context
	StderrBufferNrLines int
	Stderr              io.Writer
	DebugLog            Printer

	cmd        *exec.Cmd
	stderrTail *lineTail
}

// Args returns the argument list the command will run with.
func (c *Cmd) Args() []string {
	args := []string{
		"-nostdin",
		"-hide_banner",
	}
	args = append(args, c.Flags...)

	args = append(args, c.Input.Flags...)
	if c.Input.Format != "" {
		args = append(args, "-f", c.Input.Format)
	}
	args = append(args, "-i")
	switch file := c.Input.File.(type) {
	case string:
		args = append(args, file)
	case io.Reader:
		args = append(args, "pipe:0")
	default:
		panic(fmt.Sprintf("unknown input file type %#v should be string or io.Reader", file))
	}

	if len(c.Filter) > 0 {
		args = append(args, "-vf", c.Filter.String())
	}

	if c.Output.Codec != "" {
		args = append(args, "-c:v", c.Output.Codec)
	}
	args = append(args, c.Output.Flags...)
	if c.Output.Format != "" {
		args = append(args, "-f", c.Output.Format)
	}
	args = append(args, "pipe:1")

	return args
}

// Start the decode.
func (c *Cmd) Start() error {
	if c.Context != nil {
		c.cmd = exec.CommandContext(c.Context, FFmpegPath)
	} else {
		c.cmd = exec.Command(FFmpegPath)
	}
	c.cmd.Args = append(c.cmd.Args, c.Args()...)

	if r, ok := c.Input.File.(io.Reader); ok {
		c.cmd.Stdin = r
	}
	c.cmd.Stdout = c.Output.File

	nrLines := c.StderrBufferNrLines
	if nrLines == 0 {
		nrLines = 100
	}
	c.stderrTail = newLineTail(nrLines)
	if c.Stderr != nil {
		c.cmd.Stderr = io.MultiWriter(c.stderrTail, c.Stderr)
	} else {
		c.cmd.Stderr = c.stderrTail
	}

	if c.DebugLog != nil {
		c.DebugLog.Printf("%s %s\n", FFmpegPath, strings.Join(c.Args(), " "))
	}

	return c.cmd.Start()
}

// Wait for the decode to finish.
// Note that the error message might include command details that are sensitive
func (c *Cmd) Wait() error {
	err := c.cmd.Wait()
	c.stderrTail.Close()
	if err != nil {
		return fmt.Errorf("%w: %s", err, c.stderrTail.String())
	}
	return nil
}

// Run starts and waits for ffmpeg to finish
// Note that the error message might include command details that are sensitive
func (c *Cmd) Run() error {
	if err := c.Start(); err != nil {
		return err
	}
	return c.Wait()
}
