// Package app wires configuration into the collaborators shared by the binaries.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/rfp-desk/internal/catalog"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/llm"
	"github.com/joseph-ayodele/rfp-desk/internal/llm/anthropic"
	"github.com/joseph-ayodele/rfp-desk/internal/llm/openai"
	"github.com/joseph-ayodele/rfp-desk/internal/pipeline"
	"github.com/joseph-ayodele/rfp-desk/internal/portal"
	"github.com/joseph-ayodele/rfp-desk/internal/pricing"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(w io.Writer, cfg common.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug/info/warn/error onto slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewCompleter returns the provider adapter selected by LLM_PROVIDER.
func NewCompleter(cfg common.LLMConfig, logger *slog.Logger) (llm.Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case "anthropic":
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.AnthropicAPIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown LLM provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}

// LoadCatalog returns the catalog at path, or the built-in one when path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// NewOrchestrator builds the gateway, catalog and portal scanner from cfg.
func NewOrchestrator(cfg *common.Config, logger *slog.Logger, opts ...pipeline.Option) (*pipeline.Orchestrator, error) {
	completer, err := NewCompleter(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	gw, err := llm.NewClient(completer, llm.Options{LenientOptional: cfg.LLM.LenientOptional, Logger: logger})
	if err != nil {
		return nil, common.WrapError(err, "build inference gateway")
	}
	return NewOrchestratorWith(gw, cfg, logger, opts...)
}

// NewOrchestratorWith is NewOrchestrator over an existing gateway.
func NewOrchestratorWith(gw llm.Gateway, cfg *common.Config, logger *slog.Logger, opts ...pipeline.Option) (*pipeline.Orchestrator, error) {
	cat, err := LoadCatalog(cfg.Pipeline.CatalogPath)
	if err != nil {
		return nil, common.WrapError(err, "load catalog")
	}
	scanner := portal.NewScanner(portal.WithMaxDays(cfg.Portal.MaxDays), portal.WithLogger(logger))
	base := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithPortal(scanner),
		pipeline.WithPricingOptions(pricing.WithFeeScope(pricing.ParseFeeScope(cfg.Pipeline.LabFeeScope))),
	}
	return pipeline.New(gw, cat, append(base, opts...)...), nil
}
