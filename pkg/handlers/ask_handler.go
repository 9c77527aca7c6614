package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
	"github.com/smartcourt/smartcourt-engine/pkg/session"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// AskRequest for POST /api/ask and /api/ask/stream. The username comes
// from the session.
type AskRequest struct {
	Question      string   `json:"question"`
	KnowledgeBase string   `json:"knowledge_base"`
	Models        []string `json:"models"`
	Temperature   *float64 `json:"temperature,omitempty"`
}

// AskResponse is a finished turn. SaveError is set when the answers were
// produced but the turn could not be written to history.
type AskResponse struct {
	*services.Turn
	SaveError string `json:"save_error,omitempty"`
}

// Event names on /api/ask/stream, in the order they are sent.
const (
	EventResult      = "result"
	EventSaved       = "saved"
	EventSuggestions = "suggestions"
	EventDone        = "done"
	EventError       = "error"
)

// ResultEvent is one model's answer, sent as soon as it completes.
type ResultEvent struct {
	llm.Result
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// SavedEvent reports whether the turn reached history.
type SavedEvent struct {
	ConversationID int64            `json:"conversation_id,omitempty"`
	ResponseIDs    map[string]int64 `json:"response_ids"`
	Saved          bool             `json:"saved"`
	Error          string           `json:"error,omitempty"`
}

// SuggestionsEvent carries the follow-up questions.
type SuggestionsEvent struct {
	Suggestions []string `json:"suggestions"`
	Warning     string   `json:"warning,omitempty"`
}

// DoneEvent closes the stream.
type DoneEvent struct {
	TotalCost float64 `json:"total_cost"`
}

// ErrorEvent reports a turn that could not run.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// streamEvent is one server-sent event. err is set only on the first event
// of a turn that failed validation, so the handler can still answer with a
// plain JSON error.
type streamEvent struct {
	name string
	data any
	err  error
}

// ============================================================================
// Handler
// ============================================================================

// AskHandler runs comparison turns for the session user.
type AskHandler struct {
	chatService services.ChatService
	sessions    *session.Manager
	logger      *zap.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(chatService services.ChatService, sessions *session.Manager, logger *zap.Logger) *AskHandler {
	return &AskHandler{
		chatService: chatService,
		sessions:    sessions,
		logger:      logger,
	}
}

// RegisterRoutes registers the ask handler's routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.sessions.RequireSession(h.Ask))
	mux.HandleFunc("POST /api/ask/stream", h.sessions.RequireSession(h.Stream))
}

// Ask handles POST /api/ask and answers once every model has finished.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	req, ok := h.decode(w, r, s)
	if !ok {
		return
	}

	ctx := llm.WithCallInfo(r.Context(), llm.CallInfo{Source: llm.SourceWeb})
	turn, err := h.chatService.Ask(ctx, req, services.TurnHooks{})
	if turn == nil {
		writeServiceError(w, err, "Failed to run comparison", h.logger)
		return
	}

	resp := AskResponse{Turn: turn}
	if err != nil {
		resp.SaveError = err.Error()
	}
	h.record(s, req, turn)

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: resp}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Stream handles POST /api/ask/stream. Each model's result is sent the
// moment it completes, followed by saved, suggestions, and done events.
func (h *AskHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	req, ok := h.decode(w, r, s)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("SSE not supported")
		if err := ErrorResponse(w, http.StatusInternalServerError, "sse_unsupported", "SSE not supported"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Sized so the turn never blocks on a departed client: one result per
	// model plus saved, suggestions, and done or error.
	events := make(chan streamEvent, services.MaxSelectedModels+4)
	go h.run(llm.WithCallInfo(r.Context(), llm.CallInfo{Source: llm.SourceWeb}), s, req, events)

	started := false
	for {
		select {
		case <-r.Context().Done():
			// The turn keeps running and is still saved to history.
			h.logger.Debug("Stream client disconnected", zap.String("username", s.Username))
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if !started && ev.err != nil {
				writeServiceError(w, ev.err, "Failed to run comparison", h.logger)
				return
			}
			if !started {
				w.Header().Set("Content-Type", "text/event-stream")
				w.Header().Set("Cache-Control", "no-cache")
				w.Header().Set("Connection", "keep-alive")
				w.Header().Set("X-Accel-Buffering", "no")
				started = true
			}
			if err := writeEvent(w, ev); err != nil {
				h.logger.Error("Failed to write event", zap.String("event", ev.name), zap.Error(err))
				continue
			}
			flusher.Flush()
		}
	}
}

// run executes one turn and reports it on events, then closes events.
func (h *AskHandler) run(ctx context.Context, s *session.Session, req services.AskRequest, events chan<- streamEvent) {
	defer close(events)

	hooks := services.TurnHooks{
		OnResult: func(result llm.Result, completed, total int) {
			events <- streamEvent{name: EventResult, data: ResultEvent{Result: result, Completed: completed, Total: total}}
		},
		OnSaved: func(turn *services.Turn, err error) {
			ev := SavedEvent{
				ConversationID: turn.ConversationID,
				ResponseIDs:    turn.ResponseIDs,
				Saved:          turn.Saved,
			}
			if err != nil {
				ev.Error = err.Error()
			}
			events <- streamEvent{name: EventSaved, data: ev}
		},
	}

	turn, err := h.chatService.Ask(ctx, req, hooks)
	if turn == nil {
		status, code := errorStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to run comparison", zap.Error(err))
			message = "Failed to run comparison"
		}
		events <- streamEvent{name: EventError, data: ErrorEvent{Code: code, Message: message}, err: err}
		return
	}

	h.record(s, req, turn)
	events <- streamEvent{name: EventSuggestions, data: SuggestionsEvent{
		Suggestions: turn.Suggestions,
		Warning:     turn.SuggestionWarning,
	}}
	events <- streamEvent{name: EventDone, data: DoneEvent{TotalCost: turn.TotalCost}}
}

func (h *AskHandler) decode(w http.ResponseWriter, r *http.Request, s *session.Session) (services.AskRequest, bool) {
	var body AskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Invalid request body", h.logger)
		return services.AskRequest{}, false
	}
	return services.AskRequest{
		Username:      s.Username,
		Question:      body.Question,
		KnowledgeBase: body.KnowledgeBase,
		Models:        body.Models,
		Temperature:   body.Temperature,
	}, true
}

// record appends the turn to the session history.
func (h *AskHandler) record(s *session.Session, req services.AskRequest, turn *services.Turn) {
	modelKeys := make([]string, len(turn.Results))
	for i, result := range turn.Results {
		modelKeys[i] = result.Model
	}
	err := h.sessions.AppendTurn(s.ID, session.HistoryEntry{
		ConversationID: turn.ConversationID,
		Question:       turn.Question,
		KnowledgeBase:  req.KnowledgeBase,
		Models:         modelKeys,
		Suggestions:    turn.Suggestions,
		Saved:          turn.Saved,
		At:             turn.Timestamp,
	})
	if err != nil && !errors.Is(err, apperrors.ErrSessionExpired) {
		h.logger.Warn("Failed to record turn on session", zap.Error(err))
	}
}

// writeEvent writes one event in text/event-stream framing.
func writeEvent(w http.ResponseWriter, ev streamEvent) error {
	data, err := json.Marshal(ev.data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, data)
	return err
}
