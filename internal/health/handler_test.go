package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	modelruntime "github.com/eleven-am/inference-server/internal/runtime"
	"github.com/labstack/echo/v4"
)

type fakeRuntime struct {
	available bool
}

func (f *fakeRuntime) Load(ctx context.Context, req modelruntime.LoadRequest) (*modelruntime.ModelInfo, error) {
	return &modelruntime.ModelInfo{Model: req.Model}, nil
}

func (f *fakeRuntime) Preprocess(ctx context.Context, req modelruntime.PreprocessRequest) (*modelruntime.PreprocessResult, error) {
	return &modelruntime.PreprocessResult{}, nil
}

func (f *fakeRuntime) Generate(ctx context.Context, req modelruntime.GenerateRequest) ([]int64, error) {
	return nil, nil
}

func (f *fakeRuntime) Decode(ctx context.Context, outputIDs []int64) (string, error) {
	return "", nil
}

func (f *fakeRuntime) IsAvailable(ctx context.Context) bool { return f.available }

func doRequest(t *testing.T, h *Handler, path string, fn echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := fn(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func newTestHandler(available bool) *Handler {
	model := &modelruntime.Handle{
		Runtime: &fakeRuntime{available: available},
		Info:    modelruntime.ModelInfo{Model: "ovis"},
	}
	return NewHandler(model, nil, nil, nil, "1.0.0")
}

func TestLiveness(t *testing.T) {
	h := newTestHandler(true)
	rec := doRequest(t, h, "/health", h.Liveness)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf(`status field = %q, want "healthy"`, body["status"])
	}
	if len(body) != 1 {
		t.Errorf("liveness body should carry only the status field: %v", body)
	}
}

func TestReadinessHealthy(t *testing.T) {
	h := newTestHandler(true)
	rec := doRequest(t, h, "/health/ready", h.Readiness)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	var resp ReadinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("overall status = %q, want healthy", resp.Status)
	}
	if resp.Model != "ovis" {
		t.Errorf("model = %q", resp.Model)
	}
	if resp.Components["runtime"].Status != StatusHealthy {
		t.Errorf("runtime component = %+v", resp.Components["runtime"])
	}
	if resp.Components["redis"].Status != StatusDisabled {
		t.Errorf("redis component = %+v", resp.Components["redis"])
	}
	if resp.Components["database"].Status != StatusDisabled {
		t.Errorf("database component = %+v", resp.Components["database"])
	}
}

func TestReadinessRuntimeDown(t *testing.T) {
	h := newTestHandler(false)
	rec := doRequest(t, h, "/health/ready", h.Readiness)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	var resp ReadinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != StatusUnhealthy {
		t.Errorf("overall status = %q, want unhealthy", resp.Status)
	}
}

func TestRequestsWithoutStore(t *testing.T) {
	h := newTestHandler(true)
	rec := doRequest(t, h, "/health/requests", h.Requests)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp RequestsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Total != 0 || len(resp.Records) != 0 {
		t.Errorf("expected empty response, got %+v", resp)
	}
}

func TestComputeOverallStatus(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]ComponentStatus
		want       Status
	}{
		{
			"all healthy",
			map[string]ComponentStatus{
				"runtime": {Status: StatusHealthy},
				"redis":   {Status: StatusDisabled},
			},
			StatusHealthy,
		},
		{
			"runtime down is unhealthy",
			map[string]ComponentStatus{
				"runtime": {Status: StatusUnhealthy},
				"redis":   {Status: StatusHealthy},
			},
			StatusUnhealthy,
		},
		{
			"redis down only degrades",
			map[string]ComponentStatus{
				"runtime": {Status: StatusHealthy},
				"redis":   {Status: StatusDegraded},
			},
			StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeOverallStatus(tt.components); got != tt.want {
				t.Errorf("computeOverallStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestCounters(t *testing.T) {
	h := newTestHandler(true)
	h.IncrementRequests()
	h.IncrementRequests()
	h.IncrementInFlight()

	rec := doRequest(t, h, "/health/ready", h.Readiness)

	var resp ReadinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Requests.TotalRequests != 2 {
		t.Errorf("total requests = %d, want 2", resp.Requests.TotalRequests)
	}
	if resp.Requests.InFlight != 1 {
		t.Errorf("in flight = %d, want 1", resp.Requests.InFlight)
	}
}
