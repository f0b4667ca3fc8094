package ffmpeg

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ProbeResult is the parsed ffprobe output.
type ProbeResult struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

const sideDataDisplayMatrix = "Display Matrix"

// SideData is a union of the side data values we care about.
type SideData struct {
	SideDataType string `json:"side_data_type"`
	Rotation     int    `json:"rotation"` // counter clockwise
}

// ProbeStream is one probed stream.
type ProbeStream struct {
	Index        uint       `json:"index"`
	CodecName    string     `json:"codec_name"`
	CodecType    string     `json:"codec_type"`
	Width        uint       `json:"width"`
	Height       uint       `json:"height"`
	AvgFrameRate string     `json:"avg_frame_rate"`
	RFrameRate   string     `json:"r_frame_rate"`
	Duration     string     `json:"duration"`
	NbFrames     string     `json:"nb_frames"`
	SideDataList []SideData `json:"side_data_list"`
}

// Rotation from display matrix side data, counter clockwise degrees.
func (ps ProbeStream) Rotation() int {
	for _, s := range ps.SideDataList {
		if s.SideDataType == sideDataDisplayMatrix {
			return s.Rotation
		}
	}
	return 0
}

// Rotated reports a quarter turn rotation.
func (ps ProbeStream) Rotated() bool {
	switch ps.Rotation() {
	case -90, 90, -270, 270:
		return true
	}
	return false
}

// FrameRate parses the average frame rate fraction, falling back to
// r_frame_rate. Returns 0 if unknown.
func (ps ProbeStream) FrameRate() float64 {
	for _, s := range []string{ps.AvgFrameRate, ps.RFrameRate} {
		if r := parseRate(s); r > 0 {
			return r
		}
	}
	return 0
}

func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, _ := strconv.ParseFloat(num, 64)
	d, _ := strconv.ParseFloat(den, 64)
	if d == 0 {
		return 0
	}
	return n / d
}

// ProbeFormat is the probed container format.
type ProbeFormat struct {
	Filename       string `json:"filename"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	Duration       string `json:"duration"`
}

// FirstStreamOfType finds the first stream with codec type.
func (pr ProbeResult) FirstStreamOfType(codecType string) (ProbeStream, bool) {
	for _, s := range pr.Streams {
		if s.CodecType == codecType {
			return s, true
		}
	}
	return ProbeStream{}, false
}

// FormatName probed format (first value if comma separated)
func (pr ProbeResult) FormatName() string {
	return strings.Split(pr.Format.FormatName, ",")[0]
}

// Duration probed duration
func (pr ProbeResult) Duration() time.Duration {
	v, _ := strconv.ParseFloat(pr.Format.Duration, 64)
	return time.Duration(v * float64(time.Second))
}

// ProbeCmd is one ffprobe run.
type ProbeCmd struct {
	Flags []string
	Input Input

	Result ProbeResult

	StderrBufferNrLines int
	Stderr              io.Writer
	DebugLog            Printer
}

// Args returns the argument list the command will run with.
func (p *ProbeCmd) Args() []string {
	args := []string{
		"-hide_banner",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
	}
	args = append(args, p.Flags...)
	args = append(args, p.Input.Flags...)
	if p.Input.Format != "" {
		args = append(args, "-f", p.Input.Format)
	}
	switch file := p.Input.File.(type) {
	case string:
		args = append(args, file)
	case io.Reader:
		args = append(args, "pipe:0")
	default:
		panic(fmt.Sprintf("unknown input file type %#v should be string or io.Reader", file))
	}
	return args
}

// Run probes the input and fills Result.
// Note that the error message might include command details that are sensitive
func (p *ProbeCmd) Run() error {
	cmd := exec.Command(FFprobePath)
	cmd.Args = append(cmd.Args, p.Args()...)

	if r, ok := p.Input.File.(io.Reader); ok {
		cmd.Stdin = r
	}

	nrLines := p.StderrBufferNrLines
	if nrLines == 0 {
		nrLines = 100
	}
	tail := newLineTail(nrLines)
	if p.Stderr != nil {
		cmd.Stderr = io.MultiWriter(tail, p.Stderr)
	} else {
		cmd.Stderr = tail
	}

	if p.DebugLog != nil {
		p.DebugLog.Printf("%s %s\n", FFprobePath, strings.Join(p.Args(), " "))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	jsonErr := json.NewDecoder(stdout).Decode(&p.Result)
	waitErr := cmd.Wait()
	tail.Close()

	if waitErr != nil {
		return fmt.Errorf("%w: %s", waitErr, tail.String())
	}
	return jsonErr
}
