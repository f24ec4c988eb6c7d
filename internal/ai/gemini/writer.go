package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/ai"
	"github.com/spigell/job-digest/internal/utils"
)

const (
	systemInstruction   = "You are a concise career assistant. Output valid JSON only."
	defaultMaxLogLength = 200
	providerName        = "gemini"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Writer drafts resume bullets and a cover letter with Gemini.
type Writer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

func NewWriter(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Writer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (w *Writer) Write(ctx context.Context, req *ai.Request) (*ai.Draft, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	applicantJSON, err := json.MarshalIndent(req.Applicant, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal applicant payload: %w", err)
	}

	posting := map[string]any{
		"title":       req.Title,
		"company":     req.Company,
		"location":    req.Location,
		"url":         req.URL,
		"description": req.Description,
		"hints":       req.Hints,
	}
	postingJSON, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal posting payload: %w", err)
	}

	prompt := buildPrompt(string(applicantJSON), string(postingJSON))

	w.logger.Debug("gemini generate content request",
		zap.String("company", req.Company),
		zap.String("title", req.Title),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, w.maxLogLen)),
	)

	raw, err := w.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("gemini generate content response",
		zap.String("company", req.Company),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, w.maxLogLen)),
	)

	draft, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	draft.Provider = providerName
	draft.Raw = raw
	return draft, nil
}

func buildPrompt(applicantJSON, postingJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Applicant:\n{{APPLICANT_JSON}}\n\nPosting:\n{{POSTING_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{APPLICANT_JSON}}", applicantJSON)
	prompt = strings.ReplaceAll(prompt, "{{POSTING_JSON}}", postingJSON)
	return prompt
}

func parseResponse(raw string) (*ai.Draft, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	draft := &ai.Draft{
		Bullets:     coerceStrings(data["bullets"]),
		CoverLetter: coerceString(data["cover_letter"]),
	}

	if len(draft.Bullets) == 0 || draft.CoverLetter == "" {
		return nil, errors.New("gemini response is missing bullets or cover_letter")
	}

	return draft, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, strings.TrimSpace(strings.TrimLeft(s, "-• ")))
			}
		}
		return out
	case string:
		var out []string
		for _, line := range strings.Split(val, "\n") {
			if line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-• ")); line != "" {
				out = append(out, line)
			}
		}
		return out
	default:
		return nil
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
