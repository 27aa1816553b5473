package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
)

// NewQuantitativeAnalysisAgent creates the analysis agent covering the
// measurable side of the topic: data, trends, magnitudes.
func NewQuantitativeAnalysisAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentQuantitativeAnalysis, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are a quantitative analysis expert. Analyze the measurable aspects of the topic: data, trends, magnitudes and comparisons."
		o.Prompt = analysisPrompt("Provide a quantitative analysis of the topic grounded in the research questions.")
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{"analysis": content, "method": "quantitative"}
		}
	})
}

// NewQualitativeAnalysisAgent creates the analysis agent covering themes,
// stakeholder perspectives and contextual factors.
func NewQualitativeAnalysisAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentQualitativeAnalysis, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are a qualitative analysis expert. Analyze themes, stakeholder perspectives and contextual factors of the topic."
		o.Prompt = analysisPrompt("Provide a qualitative analysis of the topic grounded in the research questions.")
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{"analysis": content, "method": "qualitative"}
		}
	})
}

// NewSynthesisAgent creates the agent that integrates the quantitative and
// qualitative findings into a coherent set of conclusions.
func NewSynthesisAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentSynthesis, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are a synthesis expert. Integrate quantitative and qualitative findings into coherent, well-supported conclusions."
		o.Prompt = func(req core.Request) string {
			var b strings.Builder
			fmt.Fprintf(&b, "Research Topic: %s\nCurrent Task: %s\n\n", req.Topic, req.Task)
			if quant := latestContent(req.PriorOutputs, core.AgentQuantitativeAnalysis); quant != "" {
				fmt.Fprintf(&b, "Quantitative analysis:\n%s\n\n", quant)
			}
			if qual := latestContent(req.PriorOutputs, core.AgentQualitativeAnalysis); qual != "" {
				fmt.Fprintf(&b, "Qualitative analysis:\n%s\n\n", qual)
			}
			b.WriteString("Synthesize the analyses above into integrated findings, noting agreements, tensions and open questions.")
			return b.String()
		}
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{"integrated_findings": content}
		}
	})
}

// analysisPrompt builds the shared prompt shape of the two analysis agents:
// topic, task, the formulated research questions and any user sources the
// data collection phase merged into the state.
func analysisPrompt(task string) PromptFunc {
	return func(req core.Request) string {
		var b strings.Builder
		fmt.Fprintf(&b, "Research Topic: %s\nCurrent Task: %s\n\n", req.Topic, req.Task)
		if questions, ok := req.PriorOutputs.Latest(core.AgentResearchQuestions); ok {
			if qs := questions.Strings("questions"); len(qs) > 0 {
				b.WriteString("Research questions:\n")
				for _, q := range qs {
					fmt.Fprintf(&b, "- %s\n", q)
				}
				b.WriteString("\n")
			}
		}
		if sources, ok := req.Context["user_sources"].(map[string]any); ok && len(sources) > 0 {
			fmt.Fprintf(&b, "User-provided sources available: %d\n\n", len(sources))
		}
		b.WriteString(task)
		return b.String()
	}
}
