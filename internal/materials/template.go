package materials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/job-digest/internal/ai"
)

const (
	providerTemplate = "template"
	defaultHeadline  = "an M.S. Artificial Intelligence candidate"
	defaultFocus     = "practical ML/LLM implementation"
	defaultTools     = "Python and modern ML tooling"
)

var baseBullets = []string{
	"Built Python-based automation to ingest structured/unstructured data, normalize fields, and produce reliable outputs for downstream workflows.",
	"Developed repeatable evaluation and debugging routines, validating changes with clear metrics and documenting results for fast iteration.",
	"Collaborated across engineering stakeholders to translate requirements into implementable technical tasks and deliver working increments.",
}

var familyBullets = map[string][]string{
	FamilyMLOps: {
		"Implemented lightweight ML/LLM pipeline components with reproducible runs, configurable parameters, and clear logging for troubleshooting.",
		"Worked with containerized workflows and deployment-minded practices to support reliable iteration across environments (dev to production).",
		"Instrumented data and model outputs with simple quality checks to reduce regressions and improve observability.",
	},
	FamilyResearch: {
		"Designed and ran experiments to compare approaches, tracked outcomes, and summarized findings to guide next iterations.",
		"Implemented prototype components in Python to test model behavior, failure modes, and performance under varied inputs.",
		"Produced structured write-ups of experiment settings, results, and limitations to support reproducibility.",
	},
	FamilyData: {
		"Analyzed datasets to identify patterns, validate assumptions, and provide actionable insights for product/engineering decisions.",
		"Built small data transformations and QA checks to improve data reliability and reduce noisy outputs.",
		"Created clear summaries of results, assumptions, and risks for stakeholder review.",
	},
	// Used for AI Engineering and for the default family.
	FamilyAIEngineering: {
		"Built and integrated application components that consume model outputs safely and reliably, with input validation and deterministic fallbacks.",
		"Implemented simple retrieval and ranking patterns (where applicable) to improve response quality and reduce irrelevant outputs.",
		"Improved performance and reliability by profiling bottlenecks and tightening runtime behavior.",
	},
}

// TemplateWriter drafts materials from fixed templates. It never calls out
// to a network service and is the fallback for every other writer.
type TemplateWriter struct{}

func NewTemplateWriter() *TemplateWriter {
	return &TemplateWriter{}
}

func (w *TemplateWriter) Write(_ context.Context, req *ai.Request) (*ai.Draft, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}

	tailored, ok := familyBullets[req.Hints.RoleFamily]
	if !ok {
		tailored = familyBullets[FamilyAIEngineering]
	}

	bullets := make([]string, 0, 3)
	bullets = append(bullets, tailored[:2]...)
	bullets = append(bullets, baseBullets[0])

	return &ai.Draft{
		Bullets:     bullets,
		CoverLetter: coverLetter(req),
		Provider:    providerTemplate,
	}, nil
}

func coverLetter(req *ai.Request) string {
	focus := defaultFocus
	if len(req.Hints.Focus) > 0 {
		focus = strings.Join(firstN(req.Hints.Focus, 3), ", ")
	}
	tools := defaultTools
	if len(req.Hints.Tools) > 0 {
		tools = strings.Join(firstN(req.Hints.Tools, 3), ", ")
	}
	headline := strings.TrimSpace(req.Applicant.Headline)
	if headline == "" {
		headline = defaultHeadline
	}

	var b strings.Builder
	b.WriteString("Dear Hiring Team,\n\n")
	fmt.Fprintf(&b, "I am %s seeking an internship where I can contribute to %s. ", headline, focus)
	b.WriteString("I build working systems quickly, iterate based on measurable outcomes, and document decisions so teams can move with confidence.\n\n")
	fmt.Fprintf(&b, "My recent work has emphasized %s, repeatable workflows, and building reliable components that can run in real environments. ", tools)
	b.WriteString("I am comfortable learning new stacks, collaborating with engineering teams, and shipping incremental improvements under time constraints.\n\n")
	fmt.Fprintf(&b, "I would welcome the opportunity to support %s as a %s intern and contribute to production-grade ML/AI work.\n\n", req.Company, req.Title)
	b.WriteString("Sincerely,")
	if name := strings.TrimSpace(req.Applicant.Name); name != "" {
		b.WriteString("\n" + name)
	}

	return b.String()
}

func firstN(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
