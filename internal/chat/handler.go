package chat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/eleven-am/inference-server/internal/media"
	"github.com/eleven-am/inference-server/internal/requestlog"
	"github.com/eleven-am/inference-server/internal/runtime"
	"github.com/eleven-am/inference-server/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	maxNewTokens = 1024

	// Images get a finer spatial partition than video frames; video cost
	// already scales with frame count.
	imageMaxPartition = 9
	videoMaxPartition = 1
)

// Sampler extracts a frame sequence from raw video bytes.
type Sampler interface {
	Sample(ctx context.Context, videoBytes []byte, fps float64, maxFrames int) (media.FrameSequence, error)
}

type Handler struct {
	model   *runtime.Handle
	sampler Sampler
	cache   *Cache
	records *requestlog.Store
	maxDim  int
	logger  *slog.Logger
}

func NewHandler(model *runtime.Handle, sampler Sampler, cache *Cache, records *requestlog.Store, maxDim int, logger *slog.Logger) *Handler {
	if maxDim <= 0 {
		maxDim = media.DefaultMaxDim
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		model:   model,
		sampler: sampler,
		cache:   cache,
		records: records,
		maxDim:  maxDim,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/chat/completions", h.Completions)
}

// @Summary      Create chat completion
// @Description  Runs the multimodal model over an image or video plus a text prompt
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      chat.CompletionRequest  true  "chat request with one text and one media content item"
// @Success      200      {object}  chat.CompletionResponse
// @Failure      400      {object}  shared.ErrorResponse
// @Failure      500      {object}  shared.ErrorResponse
// @Router       /v1/chat/completions [post]
func (h *Handler) Completions(c echo.Context) error {
	ctx := c.Request().Context()
	start := time.Now()

	var req CompletionRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("malformed request body", "error", err)
		return shared.RespondError(c, shared.Validation("invalid request body"))
	}

	prompt, payload, err := parseContent(&req)
	if err != nil {
		h.logger.Error("request rejected", "error", err)
		return shared.RespondError(c, err)
	}

	query, frames, partition, err := h.prepare(ctx, &req, prompt, payload)
	if err != nil {
		h.logger.Error("media preparation failed", "error", err, "media_kind", payload.Kind)
		h.record(payload, 0, prompt, "", start, err)
		return shared.RespondError(c, err)
	}

	var cacheKey string
	if h.cache != nil {
		cacheKey = completionCacheKey(&req, payload, query, partition)
		if output, ok := h.cache.Get(ctx, cacheKey); ok {
			h.logger.Info("served completion from cache", "media_kind", payload.Kind)
			h.record(payload, len(frames), prompt, output, start, nil)
			return respond(c, output)
		}
	}

	output, err := h.infer(ctx, query, frames, partition)
	if err != nil {
		wrapped := shared.Inference(err)
		h.logger.Error("inference failed", "error", err, "media_kind", payload.Kind, "frames", len(frames))
		h.record(payload, len(frames), prompt, "", start, wrapped)
		return shared.RespondError(c, wrapped)
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, output); err != nil {
			h.logger.Warn("failed to cache completion", "error", err)
		}
	}

	h.logger.Info("completion served",
		"media_kind", payload.Kind,
		"frames", len(frames),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.record(payload, len(frames), prompt, output, start, nil)
	return respond(c, output)
}

// prepare turns the media payload into frames and the placeholder-prefixed
// query, choosing the partition factor by media kind.
func (h *Handler) prepare(ctx context.Context, req *CompletionRequest, prompt string, payload *media.Payload) (string, media.FrameSequence, int, error) {
	if payload.Kind == media.KindVideo {
		frames, err := h.sampler.Sample(ctx, payload.Data, req.framesPerSecond(), req.maxFrames())
		if err != nil {
			return "", nil, 0, err
		}
		if len(frames) == 0 {
			return "", nil, 0, shared.Validation("Failed to extract frames from video")
		}
		return buildQuery(len(frames), prompt), frames, videoMaxPartition, nil
	}

	frames, err := media.DecodeImage(payload.Data, h.maxDim)
	if err != nil {
		return "", nil, 0, err
	}
	return buildQuery(len(frames), prompt), frames, imageMaxPartition, nil
}

// completionCacheKey digests everything that determines the model output.
// The query alone is not enough: it encodes only the frame count, and
// different sampling parameters can land on the same count while picking
// different timestamps out of the video.
func completionCacheKey(req *CompletionRequest, payload *media.Payload, query string, partition int) string {
	params := fmt.Sprintf("%s:%d:%g:%d", payload.Kind, partition, req.framesPerSecond(), req.maxFrames())
	return shared.Digest([]byte(query), payload.Data, []byte(params))
}

func (h *Handler) infer(ctx context.Context, query string, frames media.FrameSequence, partition int) (string, error) {
	encoded, err := media.EncodeBase64JPEG(frames)
	if err != nil {
		return "", err
	}

	rt := h.model.Runtime
	pre, err := rt.Preprocess(ctx, runtime.PreprocessRequest{
		Query:        query,
		Frames:       encoded,
		MaxPartition: partition,
	})
	if err != nil {
		return "", err
	}

	outputIDs, err := rt.Generate(ctx, runtime.GenerateRequest{
		InputIDs:      pre.InputIDs,
		PixelValues:   pre.PixelValues,
		AttentionMask: runtime.AttentionMask(pre.InputIDs, h.model.Info.PadTokenID),
		Config: runtime.GenerationConfig{
			MaxNewTokens: maxNewTokens,
			DoSample:     false,
			EOSTokenID:   h.model.Info.EOSTokenID,
			PadTokenID:   h.model.Info.PadTokenID,
			UseCache:     true,
		},
	})
	if err != nil {
		return "", err
	}

	return rt.Decode(ctx, outputIDs)
}

func (h *Handler) record(payload *media.Payload, frameCount int, prompt, output string, start time.Time, reqErr error) {
	if h.records == nil {
		return
	}

	rec := &requestlog.Record{
		MediaKind:   string(payload.Kind),
		FrameCount:  frameCount,
		PromptChars: len(prompt),
		OutputChars: len(output),
		LatencyMs:   time.Since(start).Milliseconds(),
		Status:      requestlog.StatusOK,
	}
	if reqErr != nil {
		rec.Status = requestlog.StatusError
		rec.Error = reqErr.Error()
	}

	if err := h.records.Record(context.Background(), rec); err != nil {
		h.logger.Warn("failed to record request", "error", err)
	}
}

func respond(c echo.Context, output string) error {
	return c.JSON(http.StatusOK, CompletionResponse{
		Choices: []Choice{{Message: ChoiceMessage{Content: output}}},
	})
}
