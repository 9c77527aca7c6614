package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/logging"
	"github.com/smartcourt/smartcourt-engine/pkg/metrics"
	"github.com/smartcourt/smartcourt-engine/pkg/prompts"
)

const (
	maxSuggestions = 3
	// minSuggestionLength is exclusive: a line must be longer to be kept.
	minSuggestionLength = 5
)

// suggestionPrefixPattern matches list markers such as "1.", "๑.", "-", "*".
// \p{Nd} covers Thai and other non-ASCII decimal digits.
var suggestionPrefixPattern = regexp.MustCompile(`^[\p{Nd}\-\*\.]+\s*`)

// SuggestionService proposes follow-up questions after a turn.
type SuggestionService interface {
	// Suggest returns up to three follow-up questions. It never fails: on any
	// error the list is empty and warning describes what went wrong.
	Suggest(ctx context.Context, question, retrievedContext, hintModel string) (suggestions []string, warning string)

	// ModelFor returns the model used for a given hint.
	ModelFor(hintModel string) string
}

type suggestionService struct {
	cfg     *config.Config
	invoker ModelInvoker
	logger  *zap.Logger
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(cfg *config.Config, invoker ModelInvoker, logger *zap.Logger) SuggestionService {
	return &suggestionService{
		cfg:     cfg,
		invoker: invoker,
		logger:  logger.Named("suggestions"),
	}
}

var _ SuggestionService = (*suggestionService)(nil)

func (s *suggestionService) ModelFor(hintModel string) string {
	if _, ok := s.cfg.Model(hintModel); ok {
		return hintModel
	}
	if s.cfg.Suggestions.DefaultModel != "" {
		return s.cfg.Suggestions.DefaultModel
	}
	if len(s.cfg.Models) > 0 {
		return s.cfg.Models[0].Key
	}
	return ""
}

func (s *suggestionService) Suggest(ctx context.Context, question, retrievedContext, hintModel string) ([]string, string) {
	modelKey := s.ModelFor(hintModel)
	prompt := prompts.BuildSuggestionPrompt(question, retrievedContext, s.cfg.Suggestions.ContextChars)

	content, err := s.invoker.Complete(ctx, modelKey, prompt,
		s.cfg.Suggestions.MaxTokens, s.cfg.Suggestions.Temperature, s.cfg.Suggestions.Timeout())
	if err != nil {
		detail := err.Error()
		if llmErr := llm.ClassifyError(err); llmErr != nil {
			detail = llmErr.Detail()
		}
		s.logger.Warn("Suggestion generation failed",
			zap.String("model", modelKey),
			zap.String("error", logging.SanitizeError(err)))
		metrics.SuggestionFailed()
		return []string{}, "Could not generate suggested questions: " + logging.SanitizeText(detail)
	}

	suggestions := ParseSuggestions(content)
	if len(suggestions) == 0 {
		return suggestions, "No suggested questions were returned"
	}
	return suggestions, ""
}

// ParseSuggestions turns model output into at most three questions. Think
// blocks and list markers are removed and lines of five runes or fewer dropped.
func ParseSuggestions(content string) []string {
	content = llm.StripThinkBlocks(content)

	suggestions := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		clean := suggestionPrefixPattern.ReplaceAllString(line, "")
		if utf8.RuneCountInString(clean) <= minSuggestionLength {
			continue
		}
		suggestions = append(suggestions, clean)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}
