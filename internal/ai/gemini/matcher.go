package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/ai"
	"github.com/spigell/profile-scout/internal/profile"
	"github.com/spigell/profile-scout/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type Matcher struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// candidatePayload is what the model sees of a candidate. Engine scores are
// left out so the review stays independent.
type candidatePayload struct {
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url"`
}

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, logger *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) Evaluate(ctx context.Context, persona *profile.Persona, icp *profile.ICP, candidate *profile.Candidate) (*ai.FitAssessment, error) {
	if persona == nil {
		return nil, fmt.Errorf("persona is required")
	}
	if candidate == nil {
		return nil, fmt.Errorf("candidate is required")
	}
	if icp == nil {
		icp = &profile.ICP{}
	}

	personaJSON, err := json.MarshalIndent(persona, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal persona payload: %w", err)
	}

	icpJSON, err := json.MarshalIndent(icp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal icp payload: %w", err)
	}

	candidateJSON, err := json.MarshalIndent(candidatePayload{
		Name:     candidate.InferredName,
		Title:    candidate.InferredTitle,
		Company:  candidate.InferredCompany,
		Location: candidate.InferredLocation,
		Snippet:  candidate.ResultSnippet,
		URL:      candidate.LinkedInURL,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate payload: %w", err)
	}

	prompt := buildPrompt(string(personaJSON), string(icpJSON), string(candidateJSON))

	m.logger.Debug("gemini generate content request",
		zap.String("candidate_url", candidate.LinkedInURL),
		zap.String("persona", persona.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("candidate_url", candidate.LinkedInURL),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && assessment.Score < m.minScore {
		m.logger.Debug("set fit to false by score threshold",
			zap.String("candidate_url", candidate.LinkedInURL),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(personaJSON, icpJSON, candidateJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Persona:\n{{PERSONA_JSON}}\n\nICP:\n{{ICP_JSON}}\n\nCandidate:\n{{CANDIDATE_JSON}}\n\nJSON Response:"
	}

	return strings.NewReplacer(
		"{{PERSONA_JSON}}", personaJSON,
		"{{ICP_JSON}}", icpJSON,
		"{{CANDIDATE_JSON}}", candidateJSON,
	).Replace(template)
}

// fitResponse is the answer the prompt asks for. Models do not always respect
// the types, so each field accepts loosely typed values.
type fitResponse struct {
	Fit    looseBool       `json:"fit"`
	Score  looseFloat      `json:"score"`
	Reason json.RawMessage `json:"reason"`
}

type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case bool:
		*b = looseBool(val)
	case float64:
		*b = val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "1":
			*b = true
		default:
			*b = false
		}
	default:
		*b = false
	}
	return nil
}

type looseFloat float64

// UnmarshalJSON never fails; anything that is not a number becomes 0.
func (f *looseFloat) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	*f = looseFloat(value)
	return nil
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	var resp fitResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &ai.FitAssessment{
		Fit:    bool(resp.Fit),
		Score:  math.Min(math.Max(float64(resp.Score), 0), 1),
		Reason: reasonText(resp.Reason),
	}, nil
}

func reasonText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return string(raw)
}

// extractJSON strips markdown fences and any chatter around the JSON object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if body, ok := strings.CutPrefix(raw, "```"); ok {
		body = strings.TrimPrefix(body, "json")
		if end := strings.LastIndex(body, "```"); end != -1 {
			body = body[:end]
		}
		raw = body
	}

	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return strings.TrimSpace(raw)
	}
	return raw[start : end+1]
}
