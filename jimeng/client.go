package jimeng

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/headerflow/internal/metrics"
	"github.com/BaSui01/headerflow/internal/tlsutil"
	"github.com/BaSui01/headerflow/types"
)

// Vendor API actions. Submission and result retrieval are separate calls;
// the vendor keeps all task state.
const (
	actionSubmit = "CVSync2AsyncSubmitTask"
	actionResult = "CVSync2AsyncGetResult"
	apiVersion   = "2022-08-31"
	codeSuccess  = 10000
	providerName = "jimeng"
)

// Task status values reported by the vendor.
const (
	StatusInQueue    = "in_queue"
	StatusGenerating = "generating"
	StatusDone       = "done"
	StatusNotFound   = "not_found"
	StatusExpired    = "expired"
)

// SubmitRequest carries one generation task. Width and Height must already
// be normalized (see the dimension package); the client embeds them
// verbatim into the vendor request body.
type SubmitRequest struct {
	Prompt string
	Width  int
	Height int
}

// TaskResult is the state of an asynchronous generation task.
type TaskResult struct {
	TaskID    string   `json:"task_id"`
	Status    string   `json:"status"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// Done reports whether the task has produced its images.
func (r *TaskResult) Done() bool { return r.Status == StatusDone }

// GenerateResult is the outcome of a full submit-and-poll cycle.
type GenerateResult struct {
	TaskID   string        `json:"task_id"`
	ImageURL string        `json:"image_url"`
	Prompt   string        `json:"prompt"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Duration time.Duration `json:"duration"`
}

// Client talks to the Volcengine Jimeng text-to-image API. It owns request
// signing, outbound rate limiting, and a TTL cache of completed task
// results; it holds no other task state.
type Client struct {
	cfg       Config
	http      *http.Client
	signer    *signer
	limiter   *rate.Limiter
	results   *gocache.Cache
	collector *metrics.Collector
	logger    *zap.Logger
}

// New creates a Jimeng client. The metrics collector may be nil.
func New(cfg Config, collector *metrics.Collector, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, types.NewError(types.ErrAuthentication,
			"jimeng credentials missing: set access_key/secret_key or VOLC_ACCESSKEY/VOLC_SECRETKEY").
			WithProvider(providerName)
	}
	cfg = cfg.withDefaults()

	return &Client{
		cfg:  cfg,
		http: tlsutil.SecureHTTPClient(cfg.Timeout),
		signer: &signer{
			accessKey: cfg.AccessKey,
			secretKey: cfg.SecretKey,
			region:    cfg.Region,
			host:      cfg.Host,
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		results:   gocache.New(cfg.ResultCacheTTL, cfg.ResultCacheTTL),
		collector: collector,
		logger:    logger.With(zap.String("component", "jimeng_client")),
	}, nil
}

// apiEnvelope is the common vendor response wrapper.
type apiEnvelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// SubmitTask submits one generation task and returns the vendor task ID.
func (c *Client) SubmitTask(ctx context.Context, req *SubmitRequest) (string, error) {
	if req == nil || req.Prompt == "" {
		return "", types.NewError(types.ErrInvalidRequest, "prompt is required").WithProvider(providerName)
	}

	body := map[string]any{
		"req_key":      c.cfg.ReqKey,
		"prompt":       req.Prompt,
		"force_single": true, // one image per task keeps results stable
		"width":        req.Width,
		"height":       req.Height,
	}

	data, err := c.post(ctx, actionSubmit, body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", types.NewError(types.ErrUpstreamError, "malformed submit response").
			WithProvider(providerName).WithCause(err)
	}
	if parsed.TaskID == "" {
		return "", types.NewError(types.ErrUpstreamError, "submit response missing task_id").
			WithProvider(providerName)
	}

	c.logger.Info("task submitted",
		zap.String("task_id", parsed.TaskID),
		zap.Int("width", req.Width),
		zap.Int("height", req.Height),
	)
	return parsed.TaskID, nil
}

// GetResult fetches the current state of a task. Completed results are
// served from the TTL cache without another vendor round trip.
func (c *Client) GetResult(ctx context.Context, taskID string) (*TaskResult, error) {
	if taskID == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "task_id is required").WithProvider(providerName)
	}

	if cached, ok := c.results.Get(taskID); ok {
		c.collector.RecordCacheHit("task_result")
		res := cached.(TaskResult)
		return &res, nil
	}
	c.collector.RecordCacheMiss("task_result")

	reqJSON, _ := json.Marshal(map[string]any{
		"return_url": true,
		"logo_info":  map[string]any{"add_logo": false},
	})
	body := map[string]any{
		"req_key":  c.cfg.ReqKey,
		"task_id":  taskID,
		"req_json": string(reqJSON),
	}

	data, err := c.post(ctx, actionResult, body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Status    string   `json:"status"`
		ImageURLs []string `json:"image_urls"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "malformed result response").
			WithProvider(providerName).WithCause(err)
	}

	result := TaskResult{TaskID: taskID, Status: parsed.Status, ImageURLs: parsed.ImageURLs}
	switch parsed.Status {
	case StatusNotFound, StatusExpired:
		return nil, types.NewError(types.ErrTaskNotFound,
			fmt.Sprintf("task %s: %s", taskID, parsed.Status)).WithProvider(providerName)
	case StatusDone:
		c.results.SetDefault(taskID, result)
	}
	return &result, nil
}

// Generate runs the full cycle: submit, then poll until the task completes
// or MaxWait elapses. The context cancels both the polling loop and any
// in-flight request.
func (c *Client) Generate(ctx context.Context, req *SubmitRequest) (*GenerateResult, error) {
	logger := c.logger.With(zap.String("generation_id", uuid.NewString()))
	start := time.Now()

	taskID, err := c.SubmitTask(ctx, req)
	if err != nil {
		c.collector.RecordGeneration("submit_failed", time.Since(start))
		return nil, err
	}

	deadline := start.Add(c.cfg.MaxWait)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.collector.RecordGeneration("cancelled", time.Since(start))
			return nil, ctx.Err()
		case <-ticker.C:
		}

		c.collector.RecordPoll()
		result, err := c.GetResult(ctx, taskID)
		if err != nil {
			// Transient upstream failures keep the poll loop alive.
			if types.IsRetryable(err) {
				logger.Warn("poll failed, retrying", zap.Error(err))
				continue
			}
			c.collector.RecordGeneration("poll_failed", time.Since(start))
			return nil, err
		}

		if result.Done() && len(result.ImageURLs) > 0 {
			elapsed := time.Since(start)
			c.collector.RecordGeneration("success", elapsed)
			logger.Info("generation complete",
				zap.String("task_id", taskID),
				zap.Duration("elapsed", elapsed),
			)
			return &GenerateResult{
				TaskID:   taskID,
				ImageURL: result.ImageURLs[0],
				Prompt:   req.Prompt,
				Width:    req.Width,
				Height:   req.Height,
				Duration: elapsed,
			}, nil
		}

		if time.Now().After(deadline) {
			c.collector.RecordGeneration("timeout", time.Since(start))
			return nil, types.NewError(types.ErrTimeout,
				fmt.Sprintf("generation timed out after %s, task %s may still complete", c.cfg.MaxWait, taskID)).
				WithProvider(providerName).WithRetryable(true)
		}

		logger.Debug("task pending", zap.String("task_id", taskID), zap.String("status", result.Status))
	}
}

// post signs and sends one vendor request and unwraps the response envelope.
func (c *Client) post(ctx context.Context, action string, body any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	query := url.Values{}
	query.Set("Action", action)
	query.Set("Version", apiVersion)

	base := c.cfg.Endpoint
	if base == "" {
		base = "https://" + c.cfg.Host
	}
	endpoint := base + "/?" + canonicalQuery(query)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	headers := c.signer.Sign(query, payload, time.Now())
	httpReq.Header.Set("X-Date", headers.Date)
	httpReq.Header.Set("Authorization", headers.Authorization)
	httpReq.Header.Set("X-Content-Sha256", headers.ContentSha256)
	httpReq.Header.Set("Content-Type", headers.ContentType)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.collector.RecordVendorRequest(action, "transport_error", time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, types.NewError(types.ErrUpstreamTimeout, "vendor request timed out").
				WithProvider(providerName).WithRetryable(true).WithCause(err)
		}
		return nil, types.NewError(types.ErrUpstreamError, "vendor request failed").
			WithProvider(providerName).WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	c.collector.RecordVendorRequest(action, fmt.Sprintf("http_%d", resp.StatusCode), time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "read vendor response").
			WithProvider(providerName).WithCause(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, types.NewError(types.ErrAuthentication,
			fmt.Sprintf("vendor rejected credentials: status=%d", resp.StatusCode)).
			WithProvider(providerName).WithHTTPStatus(resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("vendor error: status=%d body=%s", resp.StatusCode, truncate(raw, 256))).
			WithProvider(providerName).WithHTTPStatus(resp.StatusCode).WithRetryable(true)
	case resp.StatusCode != http.StatusOK:
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("vendor error: status=%d body=%s", resp.StatusCode, truncate(raw, 256))).
			WithProvider(providerName).WithHTTPStatus(resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "malformed vendor envelope").
			WithProvider(providerName).WithCause(err)
	}
	if envelope.Code != codeSuccess {
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("vendor code %d: %s", envelope.Code, envelope.Message)).
			WithProvider(providerName)
	}
	return envelope.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
