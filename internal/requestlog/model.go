package requestlog

import "time"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Record is one completed (or failed) inference request. Prompts and outputs
// are stored as sizes only; payload content never leaves the request scope.
type Record struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	MediaKind   string    `gorm:"index" json:"media_kind"`
	FrameCount  int       `json:"frame_count"`
	PromptChars int       `json:"prompt_chars"`
	OutputChars int       `json:"output_chars"`
	LatencyMs   int64     `json:"latency_ms"`
	Status      string    `gorm:"index" json:"status"`
	Error       string    `json:"error,omitempty"`
}
