package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
)

// Edit actions reported by the editor under the "edit_action" result field.
const (
	EditActionNoAction = "no_action"
	EditActionRevised  = "revised"
)

// EditorAgent closes the quality loop: it gathers the feedback produced by
// the quality assurance team and revises the affected analysis outputs. The
// editing phase executor reads "revised_sections" from its result and
// overwrites the corresponding analysis entries in the workflow state.
type EditorAgent struct {
	llm model.Model
}

// NewEditorAgent creates the editor driven by the given model.
func NewEditorAgent(llm model.Model) *EditorAgent {
	return &EditorAgent{llm: llm}
}

// Name returns the agent's canonical name.
func (a *EditorAgent) Name() string { return core.AgentEditor }

// Process implements core.Agent. Without QA feedback it signals no_action;
// otherwise it revises each analysis section present in the prior outputs
// and reports the revisions alongside the feedback it addressed.
func (a *EditorAgent) Process(ctx context.Context, req core.Request) (core.Result, error) {
	feedback := gatherFeedback(req.PriorOutputs)
	if feedback.empty() {
		return core.NewResult(map[string]any{
			"edit_action": EditActionNoAction,
			"reason":      "no quality assurance feedback found",
		}), nil
	}

	revised := map[string]any{}
	for _, name := range []string{core.AgentQuantitativeAnalysis, core.AgentQualitativeAnalysis, core.AgentSynthesis} {
		original := analysisText(req.PriorOutputs, name)
		if original == "" {
			continue
		}
		text, err := a.revise(ctx, req.Topic, name, original, feedback)
		if err != nil {
			return core.Result{}, fmt.Errorf("%s: revise %s: %w", core.AgentEditor, name, err)
		}
		revised[name] = text
	}

	return core.NewResult(map[string]any{
		"edit_action":      EditActionRevised,
		"revised_sections": revised,
		"issues_addressed": feedback.issueCount(),
	}), nil
}

func (a *EditorAgent) revise(ctx context.Context, topic, section, original string, fb qaFeedback) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Research Topic: %s\n\n", topic)
	fmt.Fprintf(&b, "Revise the %s below to address the quality assurance feedback. Preserve correct content; fix the flagged problems.\n\n", strings.ReplaceAll(section, "_", " "))
	if len(fb.weaknesses) > 0 {
		b.WriteString("Weaknesses:\n")
		for _, w := range fb.weaknesses {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
	if len(fb.recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, r := range fb.recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}
	if len(fb.citationIssues) > 0 {
		b.WriteString("Citation issues:\n")
		for _, c := range fb.citationIssues {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	if len(fb.violations) > 0 {
		b.WriteString("Compliance violations:\n")
		for _, v := range fb.violations {
			fmt.Fprintf(&b, "- %s\n", v)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Original:\n%s", original)

	respCh, errCh := a.llm.Generate(ctx, model.Request{
		Instructions: "You are an academic editor. Rewrite research content to resolve reviewer feedback without losing substance.",
		Messages:     []model.Message{{Role: "user", Text: b.String()}},
	})
	return model.Collect(ctx, respCh, errCh)
}

// qaFeedback aggregates the actionable findings of the QA team.
type qaFeedback struct {
	weaknesses      []string
	recommendations []string
	citationIssues  []string
	violations      []string
}

func (f qaFeedback) empty() bool {
	return len(f.weaknesses)+len(f.recommendations)+len(f.citationIssues)+len(f.violations) == 0
}

func (f qaFeedback) issueCount() int {
	return len(f.weaknesses) + len(f.citationIssues) + len(f.violations)
}

func gatherFeedback(outputs core.Outputs) qaFeedback {
	var fb qaFeedback
	if review, ok := outputs.Latest(core.AgentPeerReview); ok {
		fb.weaknesses = review.Strings("weaknesses")
		fb.recommendations = review.Strings("recommendations")
	}
	if citation, ok := outputs.Latest(core.AgentCitationVerification); ok {
		fb.citationIssues = citation.Strings("format_issues")
		fb.recommendations = append(fb.recommendations, citation.Strings("recommendations")...)
	}
	if compliance, ok := outputs.Latest(core.AgentComplianceCheck); ok {
		fb.violations = compliance.Strings("violations")
	}
	return fb
}

// analysisText returns the primary text of an analysis agent's latest
// output. The two analyses store it under "analysis", the synthesis under
// "integrated_findings"; "content" is the fallback either way.
func analysisText(outputs core.Outputs, name string) string {
	r, ok := outputs.Latest(name)
	if !ok {
		return ""
	}
	for _, key := range []string{"analysis", "integrated_findings", "content"} {
		if text, ok := r.String(key); ok && text != "" {
			return text
		}
	}
	return ""
}
