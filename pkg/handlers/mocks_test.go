package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
	"github.com/smartcourt/smartcourt-engine/pkg/session"
)

// ============================================================================
// Service mocks
// ============================================================================

type mockChatService struct {
	askFunc func(ctx context.Context, req services.AskRequest, hooks services.TurnHooks) (*services.Turn, error)
	lastReq services.AskRequest
}

func (m *mockChatService) Ask(ctx context.Context, req services.AskRequest, hooks services.TurnHooks) (*services.Turn, error) {
	m.lastReq = req
	return m.askFunc(ctx, req, hooks)
}

type mockFeedbackService struct {
	rateFunc func(ctx context.Context, responseID int64, scores models.Scores, comment string) (*models.Feedback, error)
	getFunc  func(ctx context.Context, responseID int64) (*models.Feedback, error)
}

func (m *mockFeedbackService) Rate(ctx context.Context, responseID int64, scores models.Scores, comment string) (*models.Feedback, error) {
	return m.rateFunc(ctx, responseID, scores, comment)
}

func (m *mockFeedbackService) Get(ctx context.Context, responseID int64) (*models.Feedback, error) {
	return m.getFunc(ctx, responseID)
}

type mockHistoryService struct {
	listFunc          func(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error)
	getFunc           func(ctx context.Context, conversationID int64, username string) (*models.Conversation, error)
	statsFunc         func(ctx context.Context, username string) (*models.UserStats, error)
	updateCommentFunc func(ctx context.Context, conversationID int64, username, comment string) error
	deleteFunc        func(ctx context.Context, conversationID int64, username string) error
}

func (m *mockHistoryService) List(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error) {
	return m.listFunc(ctx, username, limit, search)
}

func (m *mockHistoryService) Get(ctx context.Context, conversationID int64, username string) (*models.Conversation, error) {
	return m.getFunc(ctx, conversationID, username)
}

func (m *mockHistoryService) Stats(ctx context.Context, username string) (*models.UserStats, error) {
	return m.statsFunc(ctx, username)
}

func (m *mockHistoryService) UpdateComment(ctx context.Context, conversationID int64, username, comment string) error {
	return m.updateCommentFunc(ctx, conversationID, username, comment)
}

func (m *mockHistoryService) Delete(ctx context.Context, conversationID int64, username string) error {
	return m.deleteFunc(ctx, conversationID, username)
}

type mockExportService struct {
	historyCSVFunc      func(ctx context.Context, w io.Writer, username string) error
	reportCSVFunc       func(ctx context.Context, w io.Writer) error
	conversationPDFFunc func(ctx context.Context, w io.Writer, conversationID int64, username string) error
}

func (m *mockExportService) HistoryCSV(ctx context.Context, w io.Writer, username string) error {
	return m.historyCSVFunc(ctx, w, username)
}

func (m *mockExportService) ReportCSV(ctx context.Context, w io.Writer) error {
	return m.reportCSVFunc(ctx, w)
}

func (m *mockExportService) ConversationPDF(ctx context.Context, w io.Writer, conversationID int64, username string) error {
	return m.conversationPDFFunc(ctx, w, conversationID, username)
}

func (m *mockExportService) WritePDF(w io.Writer, conv *models.Conversation) error {
	return nil
}

type mockAnalyticsService struct {
	dashboardFunc func(ctx context.Context) (*services.Dashboard, error)
}

func (m *mockAnalyticsService) Dashboard(ctx context.Context) (*services.Dashboard, error) {
	return m.dashboardFunc(ctx)
}

func (m *mockAnalyticsService) FeedbackLog(ctx context.Context, limit int) ([]models.FeedbackLogEntry, error) {
	return nil, nil
}

var (
	_ services.ChatService      = (*mockChatService)(nil)
	_ services.FeedbackService  = (*mockFeedbackService)(nil)
	_ services.HistoryService   = (*mockHistoryService)(nil)
	_ services.ExportService    = (*mockExportService)(nil)
	_ services.AnalyticsService = (*mockAnalyticsService)(nil)
)

// ============================================================================
// Helpers
// ============================================================================

func newTestSessions(t *testing.T) *session.Manager {
	t.Helper()
	return session.NewManager(&config.SessionConfig{TimeoutMinutes: 15, CookieSecret: "test-secret"}, zap.NewNop())
}

// serve routes one request through a mux holding the handler's routes.
// Paths carrying ?user= restore a session for that display name.
func serve(register func(*http.ServeMux), method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	register(mux)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}
