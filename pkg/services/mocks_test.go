package services

import (
	"context"
	"sync"
	"time"

	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

// ============================================================================
// Mock Implementations for Service Tests
// ============================================================================

type mockInvoker struct {
	mu sync.Mutex

	// invokeFunc overrides Invoke when set.
	invokeFunc   func(modelKey string) llm.Result
	completeFunc func(modelKey, prompt string) (string, error)

	invoked   []string
	completed []string
	prompts   []string
}

func (m *mockInvoker) Invoke(ctx context.Context, modelKey, prompt, retrievedContext string, citations []models.Citation, temperature float64) llm.Result {
	m.mu.Lock()
	m.invoked = append(m.invoked, modelKey)
	m.mu.Unlock()

	if m.invokeFunc != nil {
		return m.invokeFunc(modelKey)
	}
	return llm.Result{
		Model:     modelKey,
		Answer:    "answer from " + modelKey,
		Citations: citations,
		Cost:      0.01,
		Latency:   0.5,
	}
}

func (m *mockInvoker) Complete(ctx context.Context, modelKey, prompt string, maxTokens int, temperature float64, timeout time.Duration) (string, error) {
	m.mu.Lock()
	m.completed = append(m.completed, modelKey)
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.completeFunc != nil {
		return m.completeFunc(modelKey, prompt)
	}
	return "คำถามที่หนึ่งยาวพอ\nคำถามที่สองยาวพอ\nคำถามที่สามยาวพอ", nil
}

type mockRetriever struct {
	context   string
	citations []models.Citation
	queries   []string
	kbIDs     []string
}

func (m *mockRetriever) Retrieve(ctx context.Context, query, kbID string) (string, []models.Citation) {
	m.queries = append(m.queries, query)
	m.kbIDs = append(m.kbIDs, kbID)
	if kbID == "" {
		return "", []models.Citation{}
	}
	return m.context, m.citations
}

// failingConversationRepo wraps a real repository and fails CreateWithResponses.
type failingConversationRepo struct {
	conversationRepoStub
	err error
}

func (f *failingConversationRepo) CreateWithResponses(ctx context.Context, conv *models.Conversation, responses []models.Response) error {
	conv.ID = 42
	return f.err
}

// conversationRepoStub satisfies ConversationRepository with zero values.
type conversationRepoStub struct{}

func (conversationRepoStub) CreateWithResponses(ctx context.Context, conv *models.Conversation, responses []models.Response) error {
	return nil
}
func (conversationRepoStub) UpdateComment(ctx context.Context, conversationID int64, username, comment string) error {
	return nil
}
func (conversationRepoStub) GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	return nil, nil
}
func (conversationRepoStub) GetResponse(ctx context.Context, responseID int64) (*models.Response, error) {
	return nil, nil
}
func (conversationRepoStub) GetResponseID(ctx context.Context, conversationID int64, modelName string) (int64, error) {
	return 0, nil
}
func (conversationRepoStub) ListByUser(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error) {
	return nil, nil
}
func (conversationRepoStub) ListAll(ctx context.Context, limit int) ([]*models.Conversation, error) {
	return nil, nil
}
func (conversationRepoStub) Delete(ctx context.Context, conversationID int64) error { return nil }
func (conversationRepoStub) UserStats(ctx context.Context, username string) (*models.UserStats, error) {
	return nil, nil
}
