package chat

import (
	"encoding/base64"
	"strings"

	"github.com/eleven-am/inference-server/internal/media"
	"github.com/eleven-am/inference-server/internal/shared"
)

// imageToken is the per-frame placeholder the model's tokenizer expands into
// visual embeddings.
const imageToken = "<image>"

const (
	defaultFramesPerSecond = 1.0
	defaultMaxFrames       = 100
)

type CompletionRequest struct {
	Messages           []Message `json:"messages"`
	NumFramesPerSecond *float64  `json:"num_frames_per_second,omitempty"`
	MaxFrames          *int      `json:"max_frames,omitempty"`
}

type Message struct {
	Content []ContentItem `json:"content"`
}

// ContentItem is a tagged union: exactly one of Text, ImageURL or VideoURL
// is meaningful depending on Type.
type ContentItem struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *MediaURL `json:"image_url,omitempty"`
	VideoURL *MediaURL `json:"video_url,omitempty"`
}

// MediaURL carries a data URL: "data:<mime>;base64,<payload>".
type MediaURL struct {
	URL string `json:"url"`
}

type CompletionResponse struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message ChoiceMessage `json:"message"`
}

type ChoiceMessage struct {
	Content string `json:"content"`
}

func (r *CompletionRequest) framesPerSecond() float64 {
	if r.NumFramesPerSecond == nil {
		return defaultFramesPerSecond
	}
	return *r.NumFramesPerSecond
}

func (r *CompletionRequest) maxFrames() int {
	if r.MaxFrames == nil {
		return defaultMaxFrames
	}
	return *r.MaxFrames
}

// parseContent walks the first message and extracts the first text item as
// the prompt and the first image_url/video_url item as the media payload.
// Extra items are ignored.
func parseContent(req *CompletionRequest) (string, *media.Payload, error) {
	if len(req.Messages) == 0 {
		return "", nil, shared.Validation("No messages provided")
	}

	var prompt string
	var payload *media.Payload

	for _, item := range req.Messages[0].Content {
		switch item.Type {
		case "text":
			if prompt == "" {
				prompt = item.Text
			}
		case "image_url":
			if payload == nil && item.ImageURL != nil {
				data, err := decodeDataURL(item.ImageURL.URL)
				if err != nil {
					return "", nil, err
				}
				payload = &media.Payload{Kind: media.KindImage, Data: data}
			}
		case "video_url":
			if payload == nil && item.VideoURL != nil {
				data, err := decodeDataURL(item.VideoURL.URL)
				if err != nil {
					return "", nil, err
				}
				payload = &media.Payload{Kind: media.KindVideo, Data: data}
			}
		}
	}

	if prompt == "" || payload == nil {
		return "", nil, shared.Validation("Missing prompt or media")
	}
	return prompt, payload, nil
}

func decodeDataURL(url string) ([]byte, error) {
	_, encoded, found := strings.Cut(url, ",")
	if !found {
		return nil, shared.Validation("media url is not a data URL")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, shared.Validation("media payload is not valid base64")
	}
	return data, nil
}

// buildQuery joins one image token per frame with newlines and appends the
// prompt last.
func buildQuery(frameCount int, prompt string) string {
	var b strings.Builder
	for i := 0; i < frameCount; i++ {
		b.WriteString(imageToken)
		b.WriteByte('\n')
	}
	b.WriteString(prompt)
	return b.String()
}
