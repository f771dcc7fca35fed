package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/llm"
)

var _ llm.Completer = (*Client)(nil)

// Complete implements llm.Completer using chat/completions. Structured prompts
// run in json_object mode with the schema attached as a trailing system message.
func (c *Client) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	messages := []map[string]any{
		{"role": "system", "content": p.System},
	}
	if p.JSON {
		messages = append(messages,
			map[string]any{"role": "user", "content": p.User + "\n\nReturn ONLY JSON that matches the provided schema."},
		)
		if p.Schema != nil {
			messages = append(messages, map[string]any{"role": "system", "content": "JSON Schema:\n" + mustJSON(p.Schema)})
		}
	} else {
		messages = append(messages, map[string]any{"role": "user", "content": p.User})
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages":    messages,
	}
	if p.JSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	raw, err := llm.PostJSON(ctx, c.http, llm.JSONRequest{
		Provider: "openai",
		URL:      strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions",
		Body:     body,
		Headers:  map[string]string{"Authorization": "Bearer " + c.cfg.APIKey},
		Timeout:  c.cfg.Timeout,
	}, c.log.With("stage", p.Name))
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.openai.decode_error", "stage", p.Name, "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode openai response: %v: %w", err, common.ErrSchemaViolation)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.openai.no_choices", "stage", p.Name)
		return "", fmt.Errorf("no choices in openai response: %w", common.ErrEmptyResponse)
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
