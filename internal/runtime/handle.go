package runtime

import (
	"context"
	"fmt"
)

// Handle pairs a runtime with the model it loaded. It is built once at
// startup and passed to request handlers; nothing mutates it afterwards.
type Handle struct {
	Runtime Runtime
	Info    ModelInfo
}

// LoadHandle performs the one-time model load and pins the resulting token
// ids for the process lifetime.
func LoadHandle(ctx context.Context, rt Runtime, req LoadRequest) (*Handle, error) {
	info, err := rt.Load(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", req.Model, err)
	}
	return &Handle{Runtime: rt, Info: *info}, nil
}
