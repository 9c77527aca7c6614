package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

// MaxSelectedModels caps how many models one question fans out to.
const MaxSelectedModels = 8

// CompareService fans one question out to several models concurrently.
type CompareService interface {
	// ValidateModels checks a selection against the registry and drops
	// duplicates, keeping first-seen order.
	ValidateModels(modelKeys []string) ([]string, error)

	// Compare invokes every selected model in parallel. onResult is called in
	// completion order; the returned slice follows selection order and holds
	// exactly one result per model. In-flight calls are not cancelled when
	// ctx is; each call is bounded only by its own timeout.
	Compare(
		ctx context.Context,
		modelKeys []string,
		prompt string,
		retrievedContext string,
		citations []models.Citation,
		temperature float64,
		onResult ResultFunc,
	) ([]llm.Result, error)
}

type compareService struct {
	cfg     *config.Config
	invoker ModelInvoker
	logger  *zap.Logger
}

// NewCompareService creates a new CompareService.
func NewCompareService(cfg *config.Config, invoker ModelInvoker, logger *zap.Logger) CompareService {
	return &compareService{
		cfg:     cfg,
		invoker: invoker,
		logger:  logger.Named("compare"),
	}
}

var _ CompareService = (*compareService)(nil)

func (s *compareService) ValidateModels(modelKeys []string) ([]string, error) {
	seen := make(map[string]bool, len(modelKeys))
	selected := make([]string, 0, len(modelKeys))
	for _, key := range modelKeys {
		if seen[key] {
			continue
		}
		if _, ok := s.cfg.Model(key); !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownModel, key)
		}
		seen[key] = true
		selected = append(selected, key)
	}

	if len(selected) == 0 {
		return nil, apperrors.ErrNoModels
	}
	if len(selected) > MaxSelectedModels {
		return nil, fmt.Errorf("%w: %d selected, at most %d", apperrors.ErrTooManyModels, len(selected), MaxSelectedModels)
	}
	return selected, nil
}

func (s *compareService) Compare(
	ctx context.Context,
	modelKeys []string,
	prompt string,
	retrievedContext string,
	citations []models.Citation,
	temperature float64,
	onResult ResultFunc,
) ([]llm.Result, error) {
	selected, err := s.ValidateModels(modelKeys)
	if err != nil {
		return nil, err
	}

	// Model calls outlive a disconnected client so the turn can still be saved.
	callCtx := context.WithoutCancel(ctx)

	call := func(ctx context.Context, key string) llm.Result {
		return s.invoker.Invoke(ctx, key, prompt, retrievedContext, citations, temperature)
	}
	results := llm.FanOut(callCtx, selected, call, onResult, s.logger)

	failed := 0
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}

	s.logger.Info("Comparison completed",
		zap.Int("models", len(selected)),
		zap.Int("failed", failed))

	return results, nil
}
