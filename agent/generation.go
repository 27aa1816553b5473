package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
)

// NewSectionWriterAgent creates the agent that writes one report section per
// invocation. The phase supplies the section name through the request
// context under "section".
func NewSectionWriterAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentSectionWriter, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are an academic section writer. Write polished, well-structured report sections with appropriate citations."
		o.Prompt = func(req core.Request) string {
			section, _ := req.Context["section"].(string)
			var b strings.Builder
			fmt.Fprintf(&b, "Research Topic: %s\nCurrent Task: %s\n\n", req.Topic, req.Task)
			if findings, ok := req.PriorOutputs.Latest(core.AgentSynthesis); ok {
				if text, ok := findings.String("integrated_findings"); ok {
					fmt.Fprintf(&b, "Integrated findings:\n%s\n\n", text)
				}
			}
			if style, ok := req.Context["citation_style"].(string); ok && style != "" {
				fmt.Fprintf(&b, "Citation style: %s\n", style)
			}
			fmt.Fprintf(&b, "Write the %s section of the report.", strings.ReplaceAll(section, "_", " "))
			return b.String()
		}
		o.Post = func(content string, req core.Request) map[string]any {
			section, _ := req.Context["section"].(string)
			return map[string]any{
				"section_name": section,
				"word_count":   len(strings.Fields(content)),
			}
		}
	})
}

// NewCoherenceCheckAgent creates the agent that reviews the written sections
// for consistency of terminology, flow and cross-references.
func NewCoherenceCheckAgent(llm model.Model, scorer Scorer) *ModelAgent {
	if scorer == nil {
		scorer = DefaultScorer
	}
	return NewModelAgent(core.AgentCoherenceCheck, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are a coherence reviewer. Check the report sections for consistent terminology, logical flow and sound cross-references. Report a line 'Coherence Score: N/10'."
		o.Prompt = func(req core.Request) string {
			var b strings.Builder
			fmt.Fprintf(&b, "Research Topic: %s\nCurrent Task: %s\n\n", req.Topic, req.Task)
			for _, r := range req.PriorOutputs[core.AgentSectionWriter] {
				name, _ := r.String("section_name")
				fmt.Fprintf(&b, "Section %s is %d words.\n", name, wordCountOf(r))
			}
			b.WriteString("\nAssess the coherence of the report across its sections.")
			return b.String()
		}
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{"coherence_score": scorer(content)}
		}
	})
}

// FinalAssemblyAgent concatenates the written sections into the final report
// document and computes its metadata. It is fully deterministic and performs
// no model call; everything it needs is already in the prior outputs.
type FinalAssemblyAgent struct{}

// NewFinalAssemblyAgent creates the deterministic assembly agent.
func NewFinalAssemblyAgent() *FinalAssemblyAgent {
	return &FinalAssemblyAgent{}
}

// Name returns the agent's canonical name.
func (a *FinalAssemblyAgent) Name() string { return core.AgentFinalAssembly }

// Process implements core.Agent. It assembles the report from the section
// writer outputs in canonical order, tolerating missing sections, and
// attaches word count, section count and a rough citation count.
func (a *FinalAssemblyAgent) Process(_ context.Context, req core.Request) (core.Result, error) {
	sections := gatherSections(req.PriorOutputs)

	var parts []string
	parts = append(parts, titleBlock(req.Topic))

	sectionCount := 0
	for _, name := range core.ReportSections {
		content, ok := sections[name]
		if !ok {
			continue
		}
		sectionCount++
		parts = append(parts, fmt.Sprintf("# %s\n\n%s", sectionTitle(name), content))
	}

	report := strings.Join(parts, "\n\n")

	return core.NewResult(map[string]any{
		"final_report": report,
		"report_metadata": map[string]any{
			"title":          req.Topic,
			"date_generated": time.Now().UTC().Format(time.RFC3339),
			"word_count":     len(strings.Fields(report)),
			"section_count":  sectionCount,
			"citation_count": countCitations(report),
			"citation_style": stringFromContext(req.Context, "citation_style"),
			"audience":       stringFromContext(req.Context, "audience"),
		},
	}), nil
}

// gatherSections indexes section writer outputs by section name, keeping the
// latest entry when a section was written more than once.
func gatherSections(outputs core.Outputs) map[string]string {
	sections := map[string]string{}
	for _, r := range outputs[core.AgentSectionWriter] {
		name, ok := r.String("section_name")
		if !ok || name == "" {
			continue
		}
		if content, ok := r.String("content"); ok {
			sections[name] = content
		}
	}
	return sections
}

// sectionTitle turns a snake_case section name into a display heading.
func sectionTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func titleBlock(topic string) string {
	return fmt.Sprintf("# %s\n\n## A Comprehensive Research Report\n\n**Date:** %s\n\n---", topic, time.Now().UTC().Format("January 2006"))
}

// citationPattern matches parenthesized author-year references such as
// "(Smith, 2021)". A rough heuristic, intentionally so: the count is
// reported as metadata, nothing branches on it.
var citationPattern = regexp.MustCompile(`\([A-Za-z][^()]*\d{4}[a-z]?\)`)

func countCitations(text string) int {
	return len(citationPattern.FindAllString(text, -1))
}

func wordCountOf(r core.Result) int {
	if n, ok := r.Float("word_count"); ok {
		return int(n)
	}
	return 0
}

func stringFromContext(ctx map[string]any, key string) string {
	s, _ := ctx[key].(string)
	return s
}
