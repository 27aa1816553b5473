package model

import (
	"context"
	"fmt"
	"strings"
)

// Message is a single conversational turn sent to a model. Role is one of
// "system", "user" or "assistant".
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request captures the normalized model input produced by agents.
type Request struct {
	Instructions string    `json:"instructions"` // System instructions for the model
	Messages     []Message `json:"messages"`     // Conversation turns, oldest first
	Stream       bool      `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model. Partial chunks
// carry incremental text; the final chunk carries the full accumulated text
// and a finish reason.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required by agents to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Collect drains a Generate channel pair and returns the final response
// text. It is the standard synchronous consumption helper: partial chunks
// are ignored in favor of the terminal non-partial response, falling back to
// the accumulated partial text when a backend emits only deltas.
func Collect(ctx context.Context, respCh <-chan Response, errCh <-chan error) (string, error) {
	var (
		partial strings.Builder
		final   string
		haveFin bool
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				partial.WriteString(resp.Text)
				continue
			}
			final = resp.Text
			haveFin = true
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return "", err
			}
		}
	}
	if haveFin {
		return final, nil
	}
	return partial.String(), nil
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are matched against the last message text; unmatched prompts
// fall back to a generic completion so workflows always make progress.
type MockModel struct {
	info      Info
	responses map[string]string
	fallback  string
	failWith  error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
		fallback:  "mock response",
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// SetFallback overrides the completion returned for unmatched prompts.
func (m *MockModel) SetFallback(response string) { m.fallback = response }

// FailWith makes every Generate call report the given error; pass nil to
// restore normal behavior.
func (m *MockModel) FailWith(err error) { m.failWith = err }

// Generate implements Model; emits streaming char chunks followed by the
// final response, or the configured failure.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if m.failWith != nil {
			errCh <- m.failWith
			return
		}
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}

		last := req.Messages[len(req.Messages)-1]
		full, ok := m.responses[last.Text]
		if !ok {
			full = m.fallback
		}

		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Partial: false, Text: full, FinishReason: "stop"}:
		}
	}()

	return respCh, errCh
}

// Info returns metadata describing this mock implementation.
func (m *MockModel) Info() Info { return m.info }
