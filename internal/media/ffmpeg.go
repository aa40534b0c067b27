package media

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const defaultExtractTimeout = 30 * time.Second

// ffmpegExtractor decodes file-backed video through ffprobe/ffmpeg
// subprocesses, one invocation per requested frame.
type ffmpegExtractor struct {
	ffmpeg  string
	ffprobe string
	timeout time.Duration
}

func newFFmpegExtractor(cfg Config) *ffmpegExtractor {
	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobe := cfg.FFprobePath
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	timeout := cfg.ExtractTimeout
	if timeout <= 0 {
		timeout = defaultExtractTimeout
	}
	return &ffmpegExtractor{ffmpeg: ffmpeg, ffprobe: ffprobe, timeout: timeout}
}

func (e *ffmpegExtractor) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// FrameAt seeks to ts and decodes a single frame as JPEG on stdout.
func (e *ffmpegExtractor) FrameAt(ctx context.Context, path string, ts float64) (Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.ffmpeg,
		"-ss", strconv.FormatFloat(ts, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "2",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Frame{}, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	img, err := jpeg.Decode(&stdout)
	if err != nil {
		return Frame{}, fmt.Errorf("decode jpeg output: %w", err)
	}

	return Frame{Image: img, Timestamp: ts}, nil
}
