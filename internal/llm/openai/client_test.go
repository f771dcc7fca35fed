package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/llm"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Timeout: timeout,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCompleteJSONMode(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"ok\":true}  "}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL+"/", time.Second)
	out, err := c.Complete(context.Background(), llm.Prompt{
		Name: "extract", System: "sys", User: "user",
		Schema: map[string]any{"type": "object"}, JSON: true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("out = %q", out)
	}
	if got["model"] != "test-model" {
		t.Errorf("model = %v", got["model"])
	}
	rf, _ := got["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", got["response_format"])
	}
	if msgs, _ := got["messages"].([]any); len(msgs) != 3 {
		t.Errorf("messages = %d, want system+user+schema", len(msgs))
	}
}

func TestCompleteFreeTextOmitsResponseFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Subject: hi"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	if _, err := c.Complete(context.Background(), llm.Prompt{Name: "draft", System: "s", User: "u"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := got["response_format"]; ok {
		t.Error("free text request carries response_format")
	}
}

func TestCompleteErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		want    error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			want: common.ErrProviderUnavailable,
		},
		{
			name: "gateway timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusGatewayTimeout)
			},
			want: common.ErrTimeout,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			want: common.ErrEmptyResponse,
		},
		{
			name: "garbage",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			want: common.ErrSchemaViolation,
		},
		{
			name: "client timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			timeout: 20 * time.Millisecond,
			want:    common.ErrTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			timeout := tt.timeout
			if timeout == 0 {
				timeout = time.Second
			}
			c := newTestClient(srv.URL, timeout)
			_, err := c.Complete(context.Background(), llm.Prompt{Name: "match", System: "s", User: "u", JSON: true})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
