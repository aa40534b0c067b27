package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks JSON over HTTP to the model-runtime sidecar that owns the
// weights, tokenizers and device memory.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.Address,
	}
}

func (c *Client) Load(ctx context.Context, req LoadRequest) (*ModelInfo, error) {
	var info ModelInfo
	if err := c.post(ctx, "/load", req, &info); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &info, nil
}

func (c *Client) Preprocess(ctx context.Context, req PreprocessRequest) (*PreprocessResult, error) {
	var result PreprocessResult
	if err := c.post(ctx, "/preprocess", req, &result); err != nil {
		return nil, fmt.Errorf("preprocess inputs: %w", err)
	}
	return &result, nil
}

func (c *Client) Generate(ctx context.Context, req GenerateRequest) ([]int64, error) {
	var resp struct {
		OutputIDs []int64 `json:"output_ids"`
	}
	if err := c.post(ctx, "/generate", req, &resp); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return resp.OutputIDs, nil
}

func (c *Client) Decode(ctx context.Context, outputIDs []int64) (string, error) {
	req := struct {
		OutputIDs []int64 `json:"output_ids"`
	}{OutputIDs: outputIDs}

	var resp struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/decode", req, &resp); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return resp.Text, nil
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("runtime request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("runtime returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
