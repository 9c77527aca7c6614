package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/logging"
	"github.com/smartcourt/smartcourt-engine/pkg/metrics"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/repositories"
)

// DefaultTemperature is used when a request does not set one.
const DefaultTemperature = 0.3

// AskRequest is one question submitted for comparison.
type AskRequest struct {
	Username      string   `json:"username"`
	Question      string   `json:"question"`
	KnowledgeBase string   `json:"knowledge_base"` // display label
	Models        []string `json:"models"`
	Temperature   *float64 `json:"temperature,omitempty"`
}

// Turn is the outcome of one question: every model's result plus what was persisted.
type Turn struct {
	ConversationID    int64             `json:"conversation_id,omitempty"`
	Question          string            `json:"question"`
	KnowledgeBase     string            `json:"knowledge_base"`
	Citations         []models.Citation `json:"citations"`
	Results           []llm.Result      `json:"results"`
	ResponseIDs       map[string]int64  `json:"response_ids"`
	Suggestions       []string          `json:"suggestions"`
	SuggestionWarning string            `json:"suggestion_warning,omitempty"`
	Saved             bool              `json:"saved"`
	TotalCost         float64           `json:"total_cost"`
	Timestamp         time.Time         `json:"timestamp"`
}

// TurnHooks observe a turn while it runs. Both are optional.
type TurnHooks struct {
	// OnResult fires once per model in completion order.
	OnResult ResultFunc
	// OnSaved fires after persistence, before suggestions are generated.
	// err wraps apperrors.ErrNotDurablySaved when the turn was not saved.
	OnSaved func(turn *Turn, err error)
}

// ChatService runs the full question pipeline: retrieve, compare, persist, suggest.
type ChatService interface {
	// Ask runs one turn. Validation failures return a nil turn. A persistence
	// failure returns the complete turn (Saved=false) together with an error
	// wrapping apperrors.ErrNotDurablySaved.
	Ask(ctx context.Context, req AskRequest, hooks TurnHooks) (*Turn, error)
}

type chatService struct {
	cfg         *config.Config
	retriever   ContextRetriever
	compare     CompareService
	suggestions SuggestionService
	convRepo    repositories.ConversationRepository
	logger      *zap.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(
	cfg *config.Config,
	retriever ContextRetriever,
	compare CompareService,
	suggestions SuggestionService,
	convRepo repositories.ConversationRepository,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		cfg:         cfg,
		retriever:   retriever,
		compare:     compare,
		suggestions: suggestions,
		convRepo:    convRepo,
		logger:      logger.Named("chat"),
	}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) Ask(ctx context.Context, req AskRequest, hooks TurnHooks) (*Turn, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.ErrEmptyUsername
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperrors.ErrEmptyQuestion
	}
	temperature := DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 1 {
		return nil, apperrors.ErrBadTemperature
	}
	selected, err := s.compare.ValidateModels(req.Models)
	if err != nil {
		return nil, err
	}

	// Retrieval, model calls, and persistence finish even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	ctx = llm.WithCallInfo(ctx, llm.CallInfo{RequestID: uuid.NewString(), Username: username})

	kbID := s.cfg.KnowledgeBaseID(req.KnowledgeBase)
	retrievedContext, citations := s.retriever.Retrieve(ctx, question, kbID)

	results, err := s.compare.Compare(ctx, selected, question, retrievedContext, citations, temperature, hooks.OnResult)
	if err != nil {
		return nil, err
	}

	turn := &Turn{
		Question:      question,
		KnowledgeBase: req.KnowledgeBase,
		Citations:     citations,
		Results:       results,
		ResponseIDs:   map[string]int64{},
		Suggestions:   []string{},
		Timestamp:     time.Now().UTC(),
	}
	for _, r := range results {
		turn.TotalCost += r.Cost
	}

	saveErr := s.persist(ctx, username, turn)
	if hooks.OnSaved != nil {
		hooks.OnSaved(turn, saveErr)
	}

	turn.Suggestions, turn.SuggestionWarning = s.suggestions.Suggest(ctx, question, retrievedContext, selected[0])

	s.logger.Info("Turn completed",
		zap.String("username", username),
		zap.Int64("conversation_id", turn.ConversationID),
		zap.Int("models", len(results)),
		zap.Bool("saved", turn.Saved),
		zap.Float64("total_cost", turn.TotalCost),
		zap.String("question", logging.Preview(question)))

	return turn, saveErr
}

// persist writes the conversation and one response per result in selection order.
func (s *chatService) persist(ctx context.Context, username string, turn *Turn) error {
	conv := &models.Conversation{
		Timestamp:     turn.Timestamp,
		Username:      username,
		Question:      turn.Question,
		KnowledgeBase: turn.KnowledgeBase,
	}
	responses := make([]models.Response, len(turn.Results))
	for i, r := range turn.Results {
		responses[i] = models.Response{
			ModelName:    r.Model,
			Answer:       r.Answer,
			Cost:         r.Cost,
			ResponseTime: r.Latency,
		}
	}

	if err := s.convRepo.CreateWithResponses(ctx, conv, responses); err != nil {
		s.logger.Error("Failed to save conversation turn",
			zap.String("username", username),
			zap.Int64("conversation_id", conv.ID),
			zap.Error(err))
		metrics.PersistFailed()
		// A partial save still identifies the conversation.
		turn.ConversationID = conv.ID
		return fmt.Errorf("%w: %v", apperrors.ErrNotDurablySaved, err)
	}

	turn.ConversationID = conv.ID
	for _, r := range responses {
		turn.ResponseIDs[r.ModelName] = r.ID
	}
	turn.Saved = true
	return nil
}
