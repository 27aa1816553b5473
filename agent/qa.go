package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
)

// Scorer maps a free-text review to a quality score in [0,10]. The exact
// scoring heuristic is deliberately pluggable; the quality gate only depends
// on the contract, not on how the number is derived.
type Scorer func(content string) float64

var scoreLine = regexp.MustCompile(`(?i)(?:quality\s+|overall\s+)?score\s*[:=]?\s*(\d+(?:\.\d+)?)`)

// DefaultScorer parses the first "Quality Score: N" style line from the
// review text, clamped to [0,10]. Reviews without a recognizable score
// default to 7.0 so a malformed review never blocks the pipeline.
func DefaultScorer(content string) float64 {
	m := scoreLine.FindStringSubmatch(content)
	if m == nil {
		return 7.0
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 7.0
	}
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// PeerReviewOptions configures the peer review agent.
type PeerReviewOptions struct {
	// Scorer derives the quality score from the review text.
	Scorer Scorer
}

// NewPeerReviewAgent creates the QA agent that reviews the analysis outputs
// and produces the quality score read by the quality gate, along with the
// weaknesses and recommendations the editor acts on.
func NewPeerReviewAgent(llm model.Model, optFns ...func(o *PeerReviewOptions)) *ModelAgent {
	opts := PeerReviewOptions{Scorer: DefaultScorer}
	for _, fn := range optFns {
		fn(&opts)
	}

	return NewModelAgent(core.AgentPeerReview, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are an academic peer reviewer. Assess the research rigorously. Report a line 'Quality Score: N/10', a 'Weaknesses:' list and a 'Recommendations:' list."
		o.Prompt = func(req core.Request) string {
			var b strings.Builder
			fmt.Fprintf(&b, "Research Topic: %s\nCurrent Task: %s\n\n", req.Topic, req.Task)
			if findings, ok := req.PriorOutputs.Latest(core.AgentSynthesis); ok {
				if text, ok := findings.String("integrated_findings"); ok {
					fmt.Fprintf(&b, "Integrated findings under review:\n%s\n\n", text)
				}
			}
			b.WriteString("Review the research for rigor, evidence quality and argumentation. State the quality score, weaknesses and recommendations.")
			return b.String()
		}
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{
				"quality_score":   opts.Scorer(content),
				"weaknesses":      extractSection(content, "weakness", 5),
				"recommendations": extractSection(content, "recommendation", 6),
			}
		}
	})
}

// NewCitationVerificationAgent creates the QA agent that checks citation
// format and completeness against the configured citation style.
func NewCitationVerificationAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentCitationVerification, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are a citation verification specialist. Check citation format and completeness. Report a 'Format Issues:' list and a 'Recommendations:' list."
		o.Prompt = func(req core.Request) string {
			style := "APA"
			if s, ok := req.Context["citation_style"].(string); ok && s != "" {
				style = s
			}
			return fmt.Sprintf("Research Topic: %s\nCurrent Task: %s\n\nVerify the citations of the research against the %s style. List format issues and recommendations.", req.Topic, req.Task, style)
		}
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{
				"format_issues":   extractSection(content, "issue", 10),
				"recommendations": extractSection(content, "recommendation", 6),
			}
		}
	})
}

// NewComplianceCheckAgent creates the QA agent that checks the research
// against academic standards (structure, tone, attribution).
func NewComplianceCheckAgent(llm model.Model) *ModelAgent {
	return NewModelAgent(core.AgentComplianceCheck, llm, func(o *ModelAgentOptions) {
		o.Instruction = "You are an academic standards compliance checker. Assess structure, tone and attribution. Report a 'Violations:' list."
		o.Post = func(content string, _ core.Request) map[string]any {
			return map[string]any{
				"violations": extractSection(content, "violation", 10),
			}
		}
	})
}

// extractSection collects bullet lines that follow a heading containing the
// keyword, stopping at the next heading. limit caps the number of entries;
// zero means unlimited.
func extractSection(content, keyword string, limit int) []string {
	var (
		out  []string
		in   bool
		want = strings.ToLower(keyword)
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasSuffix(trimmed, ":"):
			in = strings.Contains(lower, want)
		case in && isBullet(trimmed):
			out = append(out, strings.TrimSpace(trimmed[1:]))
			if limit > 0 && len(out) >= limit {
				return out
			}
		case trimmed == "":
			// blank lines do not terminate a section
		default:
		}
	}
	return out
}

// extractBullets collects every bullet line in the content regardless of
// section. limit caps the number of entries; zero means unlimited.
func extractBullets(content string, limit int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if isBullet(trimmed) {
			out = append(out, strings.TrimSpace(trimmed[1:]))
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}
