package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
)

// PromptFunc renders the user prompt for one invocation. Implementations may
// read prior outputs and phase-supplied context but must not mutate them.
type PromptFunc func(req core.Request) string

// PostProcessor derives structured result fields from the raw completion.
type PostProcessor func(content string, req core.Request) map[string]any

// ModelAgent is the shared base for language-model-backed agents. It renders
// a prompt, drives the model and wraps the completion into a core.Result
// whose Data always carries the raw completion under "content".
type ModelAgent struct {
	name        string
	llm         model.Model
	instruction string
	prompt      PromptFunc
	post        PostProcessor
}

// ModelAgentOptions configures a ModelAgent instance.
type ModelAgentOptions struct {
	// Instruction is the system instruction sent with every request.
	Instruction string
	// Prompt overrides the default topic/task prompt rendering.
	Prompt PromptFunc
	// Post attaches agent-specific structured fields to the result.
	Post PostProcessor
}

// NewModelAgent creates a model-backed agent under the given canonical name.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction: fmt.Sprintf("You are the %s agent of a hierarchical research system. Provide detailed, accurate and well-structured output for your specialized task.", name),
		Prompt:      defaultPrompt,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelAgent{
		name:        name,
		llm:         llm,
		instruction: opts.Instruction,
		prompt:      opts.Prompt,
		post:        opts.Post,
	}
}

// Name returns the agent's canonical name.
func (a *ModelAgent) Name() string { return a.name }

// Process implements core.Agent. It renders the prompt, collects the model
// completion and returns a timestamped result. Generation errors are
// returned to the caller; the phase executor is responsible for recovery.
func (a *ModelAgent) Process(ctx context.Context, req core.Request) (core.Result, error) {
	text, err := a.generate(ctx, a.prompt(req))
	if err != nil {
		return core.Result{}, fmt.Errorf("%s: %w", a.name, err)
	}

	data := map[string]any{"content": text}
	if a.post != nil {
		for k, v := range a.post(text, req) {
			data[k] = v
		}
	}

	return core.NewResult(data), nil
}

func (a *ModelAgent) generate(ctx context.Context, prompt string) (string, error) {
	respCh, errCh := a.llm.Generate(ctx, model.Request{
		Instructions: a.instruction,
		Messages:     []model.Message{{Role: "user", Text: prompt}},
	})
	return model.Collect(ctx, respCh, errCh)
}

// defaultPrompt renders the standard topic/task prompt shared by most agents.
func defaultPrompt(req core.Request) string {
	return fmt.Sprintf("Research Topic: %s\nCurrent Task: %s\n\nPlease proceed with your specialized role and provide detailed output.", req.Topic, req.Task)
}

// latestContent returns the primary text of the named agent's most recent
// result, or the empty string when absent.
func latestContent(outputs core.Outputs, name string) string {
	r, ok := outputs.Latest(name)
	if !ok {
		return ""
	}
	content, _ := r.String("content")
	return content
}
