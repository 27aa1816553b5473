// Package agent provides the concrete research agents executed by the
// workflow phases: the research planning team (domain analysis, literature
// survey, research questions), the analysis team (quantitative, qualitative,
// synthesis), the quality assurance team (peer review, citation
// verification, compliance check), the report generation team (section
// writer, coherence check, final assembly) and the editor that closes the
// quality loop.
//
// Most agents are thin wrappers around a language model: they render a
// prompt from the invocation request, collect the completion and attach a
// few structured fields to the result. The final assembly agent is fully
// deterministic; it only rearranges what earlier agents produced.
package agent
