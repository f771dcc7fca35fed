// Package anthropic adapts the Anthropic Messages API to llm.Completer.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/llm"
)

// Config for the Anthropic client.
type Config struct {
	APIKey      string // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL     string // optional override, mainly for tests
	Model       string
	MaxTokens   int64
	Temperature float32
	Timeout     time.Duration
}

type Client struct {
	cfg    Config
	client anthropic.Client
	log    *slog.Logger
}

var _ llm.Completer = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		cfg:    cfg,
		client: anthropic.NewClient(opts...),
		log:    logger.With("provider", "anthropic"),
	}
}

// Complete sends one Messages request. The Messages API has no JSON mode, so
// structured prompts carry the schema in the system text.
func (c *Client) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	system := p.System
	user := p.User
	if p.JSON {
		user += "\n\nReturn ONLY JSON that matches the provided schema. Do not wrap it in code fences."
		if p.Schema != nil {
			b, _ := json.Marshal(p.Schema)
			system += "\n\nJSON Schema:\n" + string(b)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.cfg.Temperature))
	}

	c.log.Info("llm.anthropic.request", "req_id", rid, "stage", p.Name, "model", c.cfg.Model, "user_len", len(user))
	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		err = classify(ctx, err)
		c.log.Error("llm.anthropic.error", "req_id", rid, "stage", p.Name, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	c.log.Info("llm.anthropic.response", "req_id", rid, "stage", p.Name,
		"chars", len(text),
		"tokens_in", message.Usage.InputTokens,
		"tokens_out", message.Usage.OutputTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if text == "" {
		return "", fmt.Errorf("no text content in anthropic response: %w", common.ErrEmptyResponse)
	}
	return text, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return err
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("anthropic: %v: %w", err, common.ErrTimeout)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("anthropic status %d: %w", apiErr.StatusCode, common.ErrTimeout)
		}
		return fmt.Errorf("anthropic status %d: %w", apiErr.StatusCode, common.ErrProviderUnavailable)
	}
	return fmt.Errorf("anthropic: %v: %w", err, common.ErrProviderUnavailable)
}
