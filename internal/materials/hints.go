package materials

import (
	"strings"

	"github.com/spigell/job-digest/internal/ai"
)

const (
	FamilyMLOps         = "MLOps"
	FamilyResearch      = "Research"
	FamilyData          = "Data/Applied"
	FamilyAIEngineering = "AI Engineering"
	FamilyDefault       = "AI/ML"
)

type hintRule struct {
	label string
	words []string
}

// familyRules are checked in order; the first hit names the role family.
var familyRules = []hintRule{
	{FamilyMLOps, []string{"mlops", "platform", "infrastructure", "deployment", "observability"}},
	{FamilyResearch, []string{"research", "scientist", "researcher"}},
	{FamilyData, []string{"data", "analytics", "insights"}},
	{FamilyAIEngineering, []string{"software", "engineer", "backend", "full stack"}},
}

var focusRules = []hintRule{
	{"LLMs / RAG", []string{"llm", "large language", "rag", "retrieval", "prompt"}},
	{"Model evaluation", []string{"evaluation", "benchmark", "metrics", "ablation", "experiments"}},
	{"Pipelines", []string{"pipelines", "workflow", "orchestration", "airflow", "prefect", "dag"}},
	{"Containers", []string{"kubernetes", "docker", "helm", "containers"}},
	{"Cloud", []string{"aws", "gcp", "azure", "cloud"}},
}

var toolRules = []hintRule{
	{"PyTorch/TensorFlow/JAX", []string{"pytorch", "tensorflow", "jax"}},
	{"Python", []string{"python"}},
	{"SQL", []string{"sql"}},
}

var signalRules = []hintRule{
	{"Internship-friendly", []string{"intern", "internship"}},
	{"Remote", []string{"remote"}},
	{"Visa mention in posting", []string{"sponsor", "visa", "cpt", "opt", "h1b"}},
}

// DeriveHints scans the title and description for substrings that hint at
// the kind of role. Matching is case-insensitive.
func DeriveHints(title, description string) ai.Hints {
	t := strings.ToLower(title)
	d := strings.ToLower(description)

	has := func(words []string) bool {
		for _, w := range words {
			if strings.Contains(t, w) || strings.Contains(d, w) {
				return true
			}
		}
		return false
	}

	hints := ai.Hints{RoleFamily: FamilyDefault}
	for _, rule := range familyRules {
		if has(rule.words) {
			hints.RoleFamily = rule.label
			break
		}
	}

	collect := func(rules []hintRule) []string {
		var out []string
		for _, rule := range rules {
			if has(rule.words) {
				out = append(out, rule.label)
			}
		}
		return out
	}

	hints.Focus = collect(focusRules)
	hints.Tools = collect(toolRules)
	hints.Signals = collect(signalRules)

	return hints
}
