package runtime

import "context"

// Runtime is the pretrained-model capability consumed by the chat handler.
// Load runs once at process startup; the remaining operations are issued per
// request. Implementations are not required to be reentrant.
type Runtime interface {
	Load(ctx context.Context, req LoadRequest) (*ModelInfo, error)
	Preprocess(ctx context.Context, req PreprocessRequest) (*PreprocessResult, error)
	Generate(ctx context.Context, req GenerateRequest) ([]int64, error)
	Decode(ctx context.Context, outputIDs []int64) (string, error)
	IsAvailable(ctx context.Context) bool
}
