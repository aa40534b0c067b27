package media

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/eleven-am/inference-server/internal/shared"
)

type fakeExtractor struct {
	duration    float64
	durationErr error
	frameErr    error

	probedPaths []string
	requested   []float64
	pathExisted bool
}

func (f *fakeExtractor) Duration(ctx context.Context, path string) (float64, error) {
	f.probedPaths = append(f.probedPaths, path)
	if _, err := os.Stat(path); err == nil {
		f.pathExisted = true
	}
	return f.duration, f.durationErr
}

func (f *fakeExtractor) FrameAt(ctx context.Context, path string, ts float64) (Frame, error) {
	if f.frameErr != nil {
		return Frame{}, f.frameErr
	}
	f.requested = append(f.requested, ts)
	return Frame{Image: image.NewRGBA(image.Rect(0, 0, 8, 8)), Timestamp: ts}, nil
}

func newTestDecoder(ext extractor) *Decoder {
	return &Decoder{
		extractor: ext,
		maxDim:    DefaultMaxDim,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSampleTimestamps(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		fps       float64
		maxFrames int
		want      []float64
	}{
		{
			name:     "ten second clip at 1 fps",
			duration: 10, fps: 1, maxFrames: 100,
			want: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		{
			name:     "short clip degenerates to t zero",
			duration: 0.5, fps: 1, maxFrames: 100,
			want: []float64{0},
		},
		{
			name:     "max frames caps long clips",
			duration: 300, fps: 1, maxFrames: 5,
			want: []float64{0, 1, 2, 3, 4},
		},
		{
			name:     "two fps halves the interval",
			duration: 2, fps: 2, maxFrames: 100,
			want: []float64{0, 0.5, 1, 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleTimestamps(tt.duration, tt.fps, tt.maxFrames)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d timestamps, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("timestamp %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSampleTimestampsBounds(t *testing.T) {
	durations := []float64{0.3, 1, 1.04, 7.5, 59.97, 600}
	rates := []float64{0.5, 1, 2, 30}

	for _, d := range durations {
		for _, fps := range rates {
			ts := sampleTimestamps(d, fps, 100)

			want := int(d * fps)
			if want > 100 {
				want = 100
			}
			if want <= 0 {
				want = 1
			}
			if len(ts) != want {
				t.Errorf("D=%v fps=%v: got %d frames, want %d", d, fps, len(ts), want)
			}

			for i, v := range ts {
				if v < 0 || v >= d {
					t.Errorf("D=%v fps=%v: timestamp %v out of [0, D)", d, fps, v)
				}
				if i > 0 && v <= ts[i-1] {
					t.Errorf("D=%v fps=%v: timestamps not strictly increasing: %v", d, fps, ts)
				}
			}
		}
	}
}

func TestDecoderSample(t *testing.T) {
	ext := &fakeExtractor{duration: 10}
	d := newTestDecoder(ext)

	frames, err := d.Sample(context.Background(), []byte("not-really-mp4"), 1, 100)
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(frames) != 10 {
		t.Fatalf("got %d frames, want 10", len(frames))
	}
	for i, ts := range frames.Timestamps() {
		if ts != float64(i) {
			t.Errorf("frame %d at t=%v, want %v", i, ts, float64(i))
		}
	}
	for i, f := range frames {
		if f.Image == nil {
			t.Errorf("frame %d has no image", i)
		}
	}
	if !ext.pathExisted {
		t.Error("temp video should exist while the extractor runs")
	}
}

func TestDecoderSampleShortClip(t *testing.T) {
	ext := &fakeExtractor{duration: 0.5}
	d := newTestDecoder(ext)

	frames, err := d.Sample(context.Background(), []byte("clip"), 1, 100)
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Timestamp != 0 {
		t.Errorf("frame at t=%v, want 0", frames[0].Timestamp)
	}
}

func TestDecoderSampleCleansUpTempFile(t *testing.T) {
	tests := []struct {
		name string
		ext  *fakeExtractor
	}{
		{"success path", &fakeExtractor{duration: 3}},
		{"probe failure", &fakeExtractor{durationErr: errors.New("invalid data")}},
		{"frame failure", &fakeExtractor{duration: 3, frameErr: errors.New("seek failed")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDecoder(tt.ext)
			_, _ = d.Sample(context.Background(), []byte("payload"), 1, 100)

			for _, path := range tt.ext.probedPaths {
				if _, err := os.Stat(path); !os.IsNotExist(err) {
					t.Errorf("temp file %s still present after Sample", path)
				}
			}
		})
	}
}

func TestDecoderSampleErrors(t *testing.T) {
	tests := []struct {
		name string
		ext  *fakeExtractor
		fps  float64
		max  int
		kind shared.Kind
	}{
		{"probe failure is a decode error", &fakeExtractor{durationErr: errors.New("bad")}, 1, 100, shared.KindDecode},
		{"zero duration is empty media", &fakeExtractor{duration: 0}, 1, 100, shared.KindEmptyMedia},
		{"negative duration is empty media", &fakeExtractor{duration: -1}, 1, 100, shared.KindEmptyMedia},
		{"frame failure is a decode error", &fakeExtractor{duration: 5, frameErr: errors.New("bad")}, 1, 100, shared.KindDecode},
		{"zero fps rejected", &fakeExtractor{duration: 5}, 0, 100, shared.KindValidation},
		{"zero max frames rejected", &fakeExtractor{duration: 5}, 1, 0, shared.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDecoder(tt.ext)
			_, err := d.Sample(context.Background(), []byte("payload"), tt.fps, tt.max)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := shared.KindOf(err); got != tt.kind {
				t.Errorf("kind = %q, want %q", got, tt.kind)
			}
		})
	}
}
