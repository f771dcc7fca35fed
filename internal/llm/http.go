package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/rfp-desk/internal/common"
)

// JSONRequest is one provider call over HTTP.
type JSONRequest struct {
	Provider string // used in errors and logs
	URL      string
	Body     any
	Headers  map[string]string
	// Timeout bounds the whole exchange, body read included. Zero leaves only
	// the caller's deadline.
	Timeout time.Duration
}

// PostJSON posts req.Body and returns the raw 2xx response body. Failures are
// classified at this boundary: an expired deadline or a 408/504 wraps
// common.ErrTimeout; transport errors, other statuses and truncated bodies
// wrap common.ErrProviderUnavailable. A caller cancellation is returned as is.
func PostJSON(ctx context.Context, client *http.Client, req JSONRequest, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	parent := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	reqID := uuid.New().String()
	runID := common.RunIDFromContext(parent)
	start := time.Now()

	bs, err := json.Marshal(req.Body)
	if err != nil {
		logger.Error("llm.http.encode_error", "req_id", reqID, "run_id", runID, "error", err)
		return nil, fmt.Errorf("%s: encode request: %w", req.Provider, err)
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(bs))
	if err != nil {
		logger.Error("llm.http.build_request_error", "req_id", reqID, "run_id", runID, "error", err)
		return nil, fmt.Errorf("%s: build request: %v: %w", req.Provider, err, common.ErrProviderUnavailable)
	}
	hr.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		hr.Header.Set(k, v)
	}

	logger.Info("llm.http.request", "req_id", reqID, "run_id", runID, "url", req.URL, "content_length", len(bs))

	resp, err := client.Do(hr)
	if err != nil {
		logger.Error("llm.http.send_error", "req_id", reqID, "run_id", runID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, classifyTransport(parent, req.Provider, "send", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("llm.http.read_error", "req_id", reqID, "run_id", runID, "status", resp.StatusCode, "bytes", len(raw), "error", err)
		return nil, classifyTransport(parent, req.Provider, "read response", err)
	}

	logger.Info("llm.http.response",
		"req_id", reqID,
		"run_id", runID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode/100 == 2:
		return raw, nil
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return nil, fmt.Errorf("%s: status %d: %w", req.Provider, resp.StatusCode, common.ErrTimeout)
	default:
		return nil, fmt.Errorf("%s: status %d: %s: %w", req.Provider, resp.StatusCode, snippet(raw, 300), common.ErrProviderUnavailable)
	}
}

func classifyTransport(parent context.Context, provider, op string, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return err
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%s: %s: %v: %w", provider, op, err, common.ErrTimeout)
	}
	return fmt.Errorf("%s: %s: %v: %w", provider, op, err, common.ErrProviderUnavailable)
}

func snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
