package runtime

import "time"

type Config struct {
	// Address is the base URL of the model-runtime sidecar.
	Address string
	Timeout time.Duration
}

type LoadRequest struct {
	Model             string  `json:"model"`
	TorchDtype        string  `json:"torch_dtype"`
	Device            string  `json:"device"`
	MaxMemoryFraction float64 `json:"max_memory_fraction"`
}

// ModelInfo is returned by Load and pinned for the process lifetime.
type ModelInfo struct {
	Model      string `json:"model"`
	EOSTokenID int64  `json:"eos_token_id"`
	PadTokenID int64  `json:"pad_token_id"`
}

type PreprocessRequest struct {
	Query string `json:"query"`
	// Frames are base64-encoded JPEG stills in temporal order.
	Frames       []string `json:"frames"`
	MaxPartition int      `json:"max_partition"`
}

// PreprocessResult carries the tokenized query. PixelValues is an opaque
// handle to the visual tensor held on the sidecar; it is only valid for the
// Generate call that follows.
type PreprocessResult struct {
	Text        string  `json:"text"`
	InputIDs    []int64 `json:"input_ids"`
	PixelValues string  `json:"pixel_values"`
}

type GenerationConfig struct {
	MaxNewTokens int   `json:"max_new_tokens"`
	DoSample     bool  `json:"do_sample"`
	EOSTokenID   int64 `json:"eos_token_id"`
	PadTokenID   int64 `json:"pad_token_id"`
	UseCache     bool  `json:"use_cache"`
}

type GenerateRequest struct {
	InputIDs      []int64          `json:"input_ids"`
	PixelValues   string           `json:"pixel_values"`
	AttentionMask []bool           `json:"attention_mask"`
	Config        GenerationConfig `json:"config"`
}

// AttentionMask marks every non-padding position, mirroring
// ne(input_ids, pad_token_id).
func AttentionMask(inputIDs []int64, padTokenID int64) []bool {
	mask := make([]bool, len(inputIDs))
	for i, id := range inputIDs {
		mask[i] = id != padTokenID
	}
	return mask
}
