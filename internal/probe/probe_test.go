package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
)

// Cover art first, then the real 1080p NTSC video stream and stereo audio.
const sampleNTSC = `{
  "streams": [
    {"codec_type": "video", "width": 600, "height": 900, "r_frame_rate": "90000/1", "disposition": {"attached_pic": 1}},
    {"codec_type": "video", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001", "disposition": {"attached_pic": 0}},
    {"codec_type": "audio", "disposition": {"default": 1}}
  ],
  "format": {"duration": "12.480000"}
}`

func TestParseJSON(t *testing.T) {
	info, err := ParseJSON([]byte(sampleNTSC))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", info.Width, info.Height)
	}
	if info.FrameNum != 30000 || info.FrameDen != 1001 {
		t.Errorf("frame rate = %d/%d, want 30000/1001", info.FrameNum, info.FrameDen)
	}
	if info.Duration != 12.48 {
		t.Errorf("Duration = %v, want 12.48", info.Duration)
	}
	if r := info.FrameRate(); r < 29.96 || r > 29.98 {
		t.Errorf("FrameRate() = %v", r)
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "{"},
		{"audio only", `{"streams":[{"codec_type":"audio"}]}`},
		{"bad rate", `{"streams":[{"codec_type":"video","width":2,"height":2,"r_frame_rate":"0/0"}]}`},
		{"no size", `{"streams":[{"codec_type":"video","r_frame_rate":"25/1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(tt.data)); err == nil {
				t.Error("ParseJSON() should fail")
			}
		})
	}
}

func TestParseRationalWholeNumber(t *testing.T) {
	num, den, err := parseRational("25")
	if err != nil || num != 25 || den != 1 {
		t.Errorf("parseRational(25) = %d/%d, %v", num, den, err)
	}
}

type fakeExecutor struct {
	out string
	err error
}

func (f fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.out, f.err
}

func (f fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.out, f.err
}

func TestProbe(t *testing.T) {
	p := New(fakeExecutor{out: sampleNTSC}, "", 0)
	info, err := p.Probe(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Width != 1920 {
		t.Errorf("Width = %d", info.Width)
	}

	p = New(fakeExecutor{out: "not json"}, "", 0)
	if _, err := p.Probe(context.Background(), "clip.mp4"); !failure.Is(err, failure.InvalidResponse) {
		t.Errorf("Probe(bad output) kind = %v, want invalid_response", failure.KindOf(err))
	}

	p = New(fakeExecutor{err: errors.New("boom")}, "", 0)
	if _, err := p.Probe(context.Background(), "clip.mp4"); failure.KindOf(err) == "" {
		t.Error("Probe(exec error) should return a classified failure")
	}
}
