package media

import (
	"image"
	"time"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Payload is a request-scoped media blob with its declared kind.
type Payload struct {
	Kind Kind
	Data []byte
}

// Frame is one decoded RGB still. Timestamp is the position in the source
// video in seconds; zero for single-image payloads.
type Frame struct {
	Image     image.Image
	Timestamp float64
}

func (f Frame) Bounds() image.Rectangle {
	return f.Image.Bounds()
}

// FrameSequence is temporally ordered: timestamps strictly increase.
type FrameSequence []Frame

func (fs FrameSequence) Timestamps() []float64 {
	ts := make([]float64, len(fs))
	for i, f := range fs {
		ts[i] = f.Timestamp
	}
	return ts
}

type Config struct {
	// FFmpegPath and FFprobePath override binary lookup, mainly for tests.
	FFmpegPath  string
	FFprobePath string

	// MaxDim bounds the longest side of every returned frame.
	MaxDim int

	// ExtractTimeout bounds a single subprocess invocation.
	ExtractTimeout time.Duration
}
