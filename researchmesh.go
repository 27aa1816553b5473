// Package researchmesh provides a high-level façade over the research
// workflow engine. Most applications interact with this package by:
//  1. Creating a ResearchMesh via New() with a Config (or the defaults)
//  2. Optionally overriding the model, logger, source provider or store
//  3. Calling Run() with a research topic and reading the returned report
//
// The façade wires the full agent roster into a registry and delegates
// orchestration to workflow.Supervisor. All defaults are safe for local
// development; production deployments typically supply a durable session
// store and a structured logger.
package researchmesh

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/researchmesh/agent"
	"github.com/hupe1980/researchmesh/config"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/model"
	"github.com/hupe1980/researchmesh/model/anthropic"
	"github.com/hupe1980/researchmesh/model/openai"
	"github.com/hupe1980/researchmesh/session"
	"github.com/hupe1980/researchmesh/workflow"
)

// Options configures the ResearchMesh instance.
type Options struct {
	// Config carries the workflow tunables; defaults to config.Default().
	Config *config.Config

	// Model overrides the backend selected by Config.Provider. When set,
	// Config.Provider and Config.Model are ignored.
	Model model.Model

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Store, when set, receives a workflow state snapshot after every phase.
	Store session.Store

	// Sources supplies user documents for the data collection phase.
	Sources workflow.SourceProvider

	// ProgressCallback, when set, is notified after every phase.
	ProgressCallback workflow.ProgressCallback
}

// ResearchMesh is the high-level façade aggregating the agent registry and
// the workflow supervisor.
type ResearchMesh struct {
	opts       Options
	registry   *core.Registry
	supervisor *workflow.Supervisor
}

// New creates a ResearchMesh with optional overrides. The full agent roster
// is registered against the configured model backend.
func New(optFns ...func(o *Options)) (*ResearchMesh, error) {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	llm := opts.Model
	if llm == nil {
		var err error
		llm, err = newModel(opts.Config)
		if err != nil {
			return nil, err
		}
	}

	registry := core.NewRegistry()
	registry.Register(
		agent.NewDomainAnalysisAgent(llm),
		agent.NewLiteratureSurveyAgent(llm),
		agent.NewResearchQuestionsAgent(llm),
		agent.NewQuantitativeAnalysisAgent(llm),
		agent.NewQualitativeAnalysisAgent(llm),
		agent.NewSynthesisAgent(llm),
		agent.NewPeerReviewAgent(llm),
		agent.NewCitationVerificationAgent(llm),
		agent.NewComplianceCheckAgent(llm),
		agent.NewSectionWriterAgent(llm),
		agent.NewCoherenceCheckAgent(llm, nil),
		agent.NewFinalAssemblyAgent(),
		agent.NewEditorAgent(llm),
	)

	supervisor := workflow.NewSupervisor(registry, func(o *workflow.Options) {
		o.Logger = opts.Logger
		o.Store = opts.Store
		o.Sources = opts.Sources
		o.ProgressCallback = opts.ProgressCallback
		o.QualityThreshold = opts.Config.QualityThreshold
		o.MaxQARetries = opts.Config.MaxQARetries
	})

	return &ResearchMesh{opts: opts, registry: registry, supervisor: supervisor}, nil
}

// RegisterAgent adds or replaces an agent in the roster, keyed by its name.
// Use it to substitute custom implementations before calling Run.
func (m *ResearchMesh) RegisterAgent(a core.Agent) { m.registry.Register(a) }

// Run executes the research workflow for the topic and returns the terminal
// result, including the assembled report when the run reached generation.
func (m *ResearchMesh) Run(ctx context.Context, topic string) (*workflow.Result, error) {
	return m.supervisor.Run(ctx, topic, m.opts.Config.Requirements())
}

// newModel constructs the model backend named by the config.
func newModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "mock":
		return model.NewMockModel("mock-model", "mock"), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
