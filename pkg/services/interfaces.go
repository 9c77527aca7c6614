package services

import (
	"context"
	"time"

	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

// ModelInvoker calls registry models. Implemented by *llm.Invoker.
type ModelInvoker interface {
	Invoke(ctx context.Context, modelKey, prompt, retrievedContext string, citations []models.Citation, temperature float64) llm.Result
	Complete(ctx context.Context, modelKey, prompt string, maxTokens int, temperature float64, timeout time.Duration) (string, error)
}

// ContextRetriever fetches grounding context. Implemented by *retrieval.Retriever.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query, kbID string) (string, []models.Citation)
}

// ResultFunc receives each model result as it completes.
type ResultFunc = llm.ProgressFunc

var _ ModelInvoker = (*llm.Invoker)(nil)
