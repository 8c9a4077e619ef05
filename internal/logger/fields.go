package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/profile"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"

	FieldCandidateURL = "candidate_url"
	FieldPersona      = "persona"
	FieldTitle        = "candidate_title"
	FieldCompany      = "candidate_company"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the AI provider and model.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// CandidateFields identifies a candidate in log entries. Scores are added once known.
func CandidateFields(candidate *profile.Candidate) []zap.Field {
	if candidate == nil {
		return nil
	}

	fields := StringFields(
		StringField{Key: FieldCandidateURL, Value: candidate.LinkedInURL},
		StringField{Key: FieldPersona, Value: candidate.Persona},
		StringField{Key: FieldTitle, Value: candidate.InferredTitle},
		StringField{Key: FieldCompany, Value: candidate.InferredCompany},
	)

	if candidate.Scores != nil {
		fields = append(fields, zap.Float64("final_score", candidate.Scores.Final))
	}

	return fields
}
