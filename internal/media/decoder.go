package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/eleven-am/inference-server/internal/shared"
)

// endEpsilon keeps the last sample strictly before end-of-stream; seeking at
// or past the reported duration fails or returns an undefined frame.
const endEpsilon = 0.001

// extractor is the file-backed decode capability. The production
// implementation shells out to ffprobe/ffmpeg; tests substitute a fake.
type extractor interface {
	Duration(ctx context.Context, path string) (float64, error)
	FrameAt(ctx context.Context, path string, ts float64) (Frame, error)
}

// Decoder turns a video payload into a bounded, temporally ordered frame
// sequence sampled at a fixed rate.
type Decoder struct {
	extractor extractor
	maxDim    int
	logger    *slog.Logger
}

func NewDecoder(cfg Config, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	maxDim := cfg.MaxDim
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	return &Decoder{
		extractor: newFFmpegExtractor(cfg),
		maxDim:    maxDim,
		logger:    logger,
	}
}

// Sample extracts min(floor(duration*fps), maxFrames) frames at interval
// 1/fps. A clip too short for even one interval yields exactly one frame at
// t=0. The payload is staged in a temp file because the decoder needs
// seekable file-backed input; the file is removed on every exit path.
func (d *Decoder) Sample(ctx context.Context, videoBytes []byte, fps float64, maxFrames int) (FrameSequence, error) {
	if fps <= 0 {
		return nil, shared.Validation("num_frames_per_second must be positive")
	}
	if maxFrames <= 0 {
		return nil, shared.Validation("max_frames must be positive")
	}

	path, err := stageTempVideo(videoBytes)
	if err != nil {
		return nil, shared.DecodeWrap("stage video", err)
	}
	defer os.Remove(path)

	duration, err := d.extractor.Duration(ctx, path)
	if err != nil {
		return nil, shared.DecodeWrap("probe video", err)
	}
	if duration <= 0 {
		return nil, shared.EmptyMedia("video has no readable duration")
	}

	timestamps := sampleTimestamps(duration, fps, maxFrames)

	frames := make(FrameSequence, 0, len(timestamps))
	for _, ts := range timestamps {
		frame, err := d.extractor.FrameAt(ctx, path, ts)
		if err != nil {
			return nil, shared.DecodeWrap(fmt.Sprintf("decode frame at %.3fs", ts), err)
		}
		frame.Image = scaleToFit(frame.Image, d.maxDim)
		frame.Timestamp = ts
		frames = append(frames, frame)
	}

	d.logger.Info("extracted video frames",
		"frames", len(frames),
		"fps", fps,
		"duration_seconds", duration,
	)

	return frames, nil
}

// sampleTimestamps computes the sampling schedule for a clip of the given
// duration: t_i = min(duration-eps, i/fps) for i in [0, n), with
// n = min(floor(duration*fps), maxFrames). n <= 0 degenerates to a single
// sample at t=0.
func sampleTimestamps(duration, fps float64, maxFrames int) []float64 {
	n := int(duration * fps)
	if n > maxFrames {
		n = maxFrames
	}
	if n <= 0 {
		return []float64{0}
	}

	interval := 1.0 / fps
	ts := make([]float64, n)
	for i := range ts {
		t := float64(i) * interval
		if limit := duration - endEpsilon; t > limit {
			t = limit
		}
		ts[i] = t
	}
	return ts
}

func stageTempVideo(data []byte) (string, error) {
	f, err := os.CreateTemp("", "inference-video-*.mp4")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
