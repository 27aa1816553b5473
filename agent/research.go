package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
)

// NewDomainAnalysisAgent creates the research planning agent that maps the
// topic's domain landscape: key concepts, subfields and open debates. When
// the phase supplies strategic_mode in the request context, the analysis is
// widened to include strategic and policy framing.
func NewDomainAnalysisAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentDomainAnalysis, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are a domain analysis expert. Map the research domain: key concepts, subfields, seminal debates and terminology."
		o.Prompt = func(req core.Request) string {
			var b strings.Builder
			fmt.Fprintf(&b, "Research Topic: %s\nCurrent Task: %s\n\n", req.Topic, req.Task)
			b.WriteString("Analyze the domain of this topic. Identify the core concepts, adjacent fields and the main scholarly debates.")
			if strategic, _ := req.Context["strategic_mode"].(bool); strategic {
				b.WriteString(" Include strategic and policy implications of the domain.")
			}
			return b.String()
		}
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{"analysis": content}
		}
	})
}

// NewLiteratureSurveyAgent creates the agent that surveys relevant
// literature, building on the domain analysis already in the state.
func NewLiteratureSurveyAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentLiteratureSurvey, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are a literature survey specialist. Identify and summarize the most relevant prior work for the topic."
		o.Prompt = func(req core.Request) string {
			var b strings.Builder
			fmt.Fprintf(&b, "Research Topic: %s\nCurrent Task: %s\n\n", req.Topic, req.Task)
			if domain := latestContent(req.PriorOutputs, core.AgentDomainAnalysis); domain != "" {
				fmt.Fprintf(&b, "Domain analysis so far:\n%s\n\n", domain)
			}
			b.WriteString("Survey the literature most relevant to this topic. Group works by theme and note methodological trends and gaps.")
			return b.String()
		}
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{"survey": content}
		}
	})
}

// NewResearchQuestionsAgent creates the agent that formulates the research
// questions guiding the rest of the pipeline. The number of questions is
// controlled by question_depth in the request context.
func NewResearchQuestionsAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentResearchQuestions, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are a research methodology expert. Formulate precise, answerable research questions."
		o.Prompt = func(req core.Request) string {
			depth := 5
			if d, ok := req.Context["question_depth"].(int); ok && d > 0 {
				depth = d
			}
			var b strings.Builder
			fmt.Fprintf(&b, "Research Topic: %s\nCurrent Task: %s\n\n", req.Topic, req.Task)
			if survey := latestContent(req.PriorOutputs, core.AgentLiteratureSurvey); survey != "" {
				fmt.Fprintf(&b, "Literature survey so far:\n%s\n\n", survey)
			}
			fmt.Fprintf(&b, "Formulate %d research questions that the report should answer, ordered from foundational to specific.", depth)
			return b.String()
		}
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{"questions": extractBullets(content, 0)}
		}
	})
}
