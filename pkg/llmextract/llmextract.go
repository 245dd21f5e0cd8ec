// Package llmextract is the structured-LLM-extractor external collaborator
// (spec.md §6): given a prompt and a response schema for a list of per-field
// extractions, returns a parsed list or fails. The teacher's own LLM client
// (pkg/llm/client.go) talks to a gRPC backend via a generated protobuf
// package that is absent from the retrieval pack (no .proto files, codegen
// disallowed) — see DESIGN.md. This package is grounded instead on
// _examples/steveyegge-beads/internal/compact/haiku.go's Anthropic-SDK
// retry/backoff pattern, which is a genuinely present, real-API-confident
// usage of github.com/anthropics/anthropic-sdk-go elsewhere in the
// retrieval pack.
package llmextract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// FieldDefinition pairs a MediaFeatureField name with the fixed natural-
// language description shown to the model, ported verbatim from
// original_source/src/merge/merge_node.py's FIELD_DEFINITIONS.
type FieldDefinition struct {
	Name        string
	Description string
}

// Extraction is one per-field result in the shape spec.md §6 and §9
// require the response schema to accept.
type Extraction struct {
	FieldName    string   `json:"field_name"`
	Value        *string  `json:"value"`
	SourceQuotes []string `json:"source_quotes"`
	LLMReasoning *string  `json:"llm_reasoning"`
}

// Client is the LLM-extractor interface consumed by pkg/enrich's Merge node.
// Thread-safe: a single instance is shared across all worker goroutines
// (spec.md §5).
type Client interface {
	Extract(ctx context.Context, articleTitle, articleContent string, publishedDate *time.Time, fields []FieldDefinition) ([]Extraction, error)
}

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// AnthropicClient implements Client via Messages.New, instructing the model
// to respond with a JSON array matching the Extraction shape and parsing
// that response with a post-hoc JSON decode (see parseExtractions) instead
// of the Go SDK's tool-use structured output.
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
	logger *slog.Logger
}

// NewAnthropicClient builds a client. Env var ANTHROPIC_API_KEY takes
// precedence over an explicit apiKey, mirroring haiku.go's constructor.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY required: set the environment variable or provide via config")
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
		logger: slog.Default(),
	}, nil
}

// Extract calls the model once for one article, requesting all of the given
// fields at once, matching original_source/src/merge/merge_node.py's
// extract_fields prompt shape.
func (a *AnthropicClient) Extract(ctx context.Context, articleTitle, articleContent string, publishedDate *time.Time, fields []FieldDefinition) ([]Extraction, error) {
	prompt := buildPrompt(articleTitle, articleContent, publishedDate, fields)

	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	text, err := a.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	extractions, err := parseExtractions(text)
	if err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}
	return extractions, nil
}

func (a *AnthropicClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		message, err := a.client.Messages.New(ctx, params)
		if err == nil {
			if len(message.Content) > 0 && message.Content[0].Type == "text" {
				return message.Content[0].Text, nil
			}
			return "", errors.New("unexpected response format: no text block")
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryable(err) {
			return "", fmt.Errorf("non-retryable error: %w", err)
		}
		a.logger.Warn("retrying LLM extraction call", "attempt", attempt+1, "error", err)
	}
	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}

func buildPrompt(title, content string, published *time.Time, fields []FieldDefinition) string {
	prompt := "You are extracting structured information from a police shooting incident article.\n" +
		"For each of the following fields, extract the value from the article:\n"
	for _, f := range fields {
		prompt += fmt.Sprintf("- %q: %s\n", f.Name, f.Description)
	}
	prompt += "\nInstructions:\n" +
		"- Use the exact field names shown above.\n" +
		"- Quote the relevant sentence verbatim in \"source_quotes\".\n" +
		"- Explain your rationale in \"llm_reasoning\".\n" +
		"- If a field is not mentioned in the article, set \"value\" to null.\n" +
		"- Respond with ONLY a JSON array of objects, each shaped exactly as:\n" +
		`  {"field_name": string, "value": string|null, "source_quotes": [string], "llm_reasoning": string|null}` + "\n\n"

	prompt += fmt.Sprintf("Article title: %s\n", title)
	if published != nil {
		prompt += fmt.Sprintf("Published: %s\n", published.Format("2006-01-02"))
	}
	prompt += "Content:\n---\n" + content + "\n---\n"
	return prompt
}

// parseExtractions decodes the outermost JSON array in the model's reply
// into Extraction values. Only JSON syntax and field types are checked:
// unknown keys are ignored and no key is required, so an entry with a
// missing field_name decodes with an empty name. A response with no array,
// or one that fails to decode, is a parse error the caller swallows as an
// empty-extraction article (spec.md §4.4, §7), never a pipeline-level
// failure.
func parseExtractions(text string) ([]Extraction, error) {
	start := indexOf(text, '[')
	end := lastIndexOf(text, ']')
	if start < 0 || end < 0 || end < start {
		return nil, errors.New("response does not contain a JSON array")
	}
	var extractions []Extraction
	if err := json.Unmarshal([]byte(text[start:end+1]), &extractions); err != nil {
		return nil, err
	}
	return extractions, nil
}

func indexOf(s string, r byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == r {
			return i
		}
	}
	return -1
}

func lastIndexOf(s string, r byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == r {
			return i
		}
	}
	return -1
}
