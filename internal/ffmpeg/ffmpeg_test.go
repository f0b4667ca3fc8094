package ffmpeg_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wader/osleaktest"

	"github.com/termcat/termcat/internal/ffmpeg"
)

func leakChecks(t *testing.T) func() {
	leakFn := leaktest.Check(t)
	osLeakFn := osleaktest.Check(t)
	return func() {
		leakFn()
		osLeakFn()
	}
}

func TestFilterChainString(t *testing.T) {
	tests := []struct {
		name  string
		chain ffmpeg.FilterChain
		want  string
	}{
		{
			name:  "no options",
			chain: ffmpeg.FilterChain{{Name: "hflip"}},
			want:  "hflip",
		},
		{
			name: "options sorted by key",
			chain: ffmpeg.FilterChain{
				{Name: "scale", Options: map[string]string{"w": "10", "h": "20"}},
			},
			want: "scale=h=20:w=10",
		},
		{
			name: "values escaped",
			chain: ffmpeg.FilterChain{
				{Name: "select", Options: map[string]string{"expr": "gte(n,3)"}},
			},
			want: `select=expr=gte(n\,3)`,
		},
		{
			name: "chained",
			chain: ffmpeg.FilterChain{
				{Name: "select", Options: map[string]string{"expr": "gte(n,3)"}},
				{Name: "scale", Options: map[string]string{"w": "10", "h": "20"}},
			},
			want: `select=expr=gte(n\,3),scale=h=20:w=10`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.chain.String())
		})
	}
}

func TestCmdArgs(t *testing.T) {
	c := &ffmpeg.Cmd{
		Input: ffmpeg.Input{File: "in.mp4"},
		Filter: ffmpeg.FilterChain{
			{Name: "scale", Options: map[string]string{"w": "10", "h": "20"}},
		},
		Output: ffmpeg.Output{
			File:   io.Discard,
			Format: "image2pipe",
			Codec:  "png",
			Flags:  []string{"-frames:v", "3"},
		},
	}
	assert.Equal(t, []string{
		"-nostdin", "-hide_banner",
		"-i", "in.mp4",
		"-vf", "scale=h=20:w=10",
		"-c:v", "png",
		"-frames:v", "3",
		"-f", "image2pipe",
		"pipe:1",
	}, c.Args())
}

func TestCmdArgsReaderInput(t *testing.T) {
	c := &ffmpeg.Cmd{
		Input:  ffmpeg.Input{File: bytes.NewReader(nil), Format: "mp4"},
		Output: ffmpeg.Output{File: io.Discard, Format: "image2pipe", Codec: "png"},
	}
	assert.Equal(t, []string{
		"-nostdin", "-hide_banner",
		"-f", "mp4",
		"-i", "pipe:0",
		"-c:v", "png",
		"-f", "image2pipe",
		"pipe:1",
	}, c.Args())
}

func TestProbeCmdArgs(t *testing.T) {
	p := &ffmpeg.ProbeCmd{Input: ffmpeg.Input{File: bytes.NewReader(nil)}}
	assert.Equal(t, []string{
		"-hide_banner",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"pipe:0",
	}, p.Args())
}

func TestProbeResultJSON(t *testing.T) {
	const sample = `{
		"format": {
			"filename": "clip.mov",
			"format_name": "mov,mp4,m4a,3gp,3g2,mj2",
			"duration": "1.500000"
		},
		"streams": [
			{"index": 0, "codec_type": "audio", "codec_name": "aac"},
			{
				"index": 1, "codec_type": "video", "codec_name": "h264",
				"width": 1920, "height": 1080,
				"avg_frame_rate": "30000/1001", "r_frame_rate": "30/1",
				"side_data_list": [
					{"side_data_type": "Display Matrix", "rotation": -90}
				]
			}
		]
	}`

	var pr ffmpeg.ProbeResult
	require.NoError(t, json.Unmarshal([]byte(sample), &pr))

	assert.Equal(t, "mov", pr.FormatName())
	assert.Equal(t, 1500*time.Millisecond, pr.Duration())

	vs, ok := pr.FirstStreamOfType("video")
	require.True(t, ok)
	assert.Equal(t, uint(1920), vs.Width)
	assert.Equal(t, -90, vs.Rotation())
	assert.True(t, vs.Rotated())
	assert.InDelta(t, 29.97, vs.FrameRate(), 0.01)

	as, ok := pr.FirstStreamOfType("audio")
	require.True(t, ok)
	assert.False(t, as.Rotated())
	assert.Equal(t, float64(0), as.FrameRate())

	_, ok = pr.FirstStreamOfType("subtitle")
	assert.False(t, ok)
}

func TestRunDecodesFrames(t *testing.T) {
	if !ffmpeg.Available() {
		t.Skip("ffmpeg not found")
	}
	defer leakChecks(t)()

	buf := &bytes.Buffer{}
	c := &ffmpeg.Cmd{
		Context: context.Background(),
		Input: ffmpeg.Input{
			Format: "lavfi",
			File:   "testsrc=duration=1:size=64x48:rate=10",
		},
		Output: ffmpeg.Output{
			File:   buf,
			Format: "image2pipe",
			Codec:  "png",
			Flags:  []string{"-frames:v", "3"},
		},
	}
	require.NoError(t, c.Run())

	r := bufio.NewReader(buf)
	frames := 0
	for {
		m, err := png.Decode(r)
		if err != nil {
			break
		}
		frames++
		assert.Equal(t, 64, m.Bounds().Dx())
		assert.Equal(t, 48, m.Bounds().Dy())
	}
	assert.Equal(t, 3, frames)
}

func TestProbeReaderInput(t *testing.T) {
	if !ffmpeg.Available() {
		t.Skip("ffmpeg not found")
	}
	defer leakChecks(t)()

	data := &bytes.Buffer{}
	gen := &ffmpeg.Cmd{
		Context: context.Background(),
		Input: ffmpeg.Input{
			Format: "lavfi",
			File:   "testsrc=duration=1:size=64x48:rate=10",
		},
		Output: ffmpeg.Output{File: data, Format: "nut", Codec: "png"},
	}
	require.NoError(t, gen.Run())

	p := &ffmpeg.ProbeCmd{Input: ffmpeg.Input{File: bytes.NewReader(data.Bytes())}}
	require.NoError(t, p.Run())

	assert.Equal(t, "nut", p.Result.FormatName())
	vs, ok := p.Result.FirstStreamOfType("video")
	require.True(t, ok)
	assert.Equal(t, uint(64), vs.Width)
	assert.Equal(t, uint(48), vs.Height)
}

func TestRunBadInputError(t *testing.T) {
	if !ffmpeg.Available() {
		t.Skip("ffmpeg not found")
	}
	defer leakChecks(t)()

	c := &ffmpeg.Cmd{
		Context: context.Background(),
		Input:   ffmpeg.Input{File: bytes.NewReader([]byte("not media"))},
		Output:  ffmpeg.Output{File: io.Discard, Format: "image2pipe", Codec: "png"},
	}
	err := c.Run()
	require.Error(t, err)
	// Error carries the stderr tail with ffmpeg's own diagnostic.
	assert.NotEmpty(t, err.Error())
}
