package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

func TestHistoryHandler_List(t *testing.T) {
	var gotUser, gotSearch string
	var gotLimit int
	svc := &mockHistoryService{
		listFunc: func(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error) {
			gotUser, gotLimit, gotSearch = username, limit, search
			return []*models.Conversation{{ID: 2, Username: username, Question: "bail terms"}}, nil
		},
	}
	h := NewHistoryHandler(svc, newTestSessions(t), zap.NewNop())

	rec := serve(h.RegisterRoutes, http.MethodGet, "/api/history?user=alice&limit=5&q=bail", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, "bail", gotSearch)

	var resp struct {
		Data HistoryListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "bail terms", resp.Data.Conversations[0].Question)
}

func TestHistoryHandler_List_EmptyIsArray(t *testing.T) {
	svc := &mockHistoryService{
		listFunc: func(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error) {
			return nil, nil
		},
	}
	h := NewHistoryHandler(svc, newTestSessions(t), zap.NewNop())

	rec := serve(h.RegisterRoutes, http.MethodGet, "/api/history?user=alice&limit=oops", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"conversations":[]`)
}

func TestHistoryHandler_List_InternalErrorHidden(t *testing.T) {
	svc := &mockHistoryService{
		listFunc: func(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error) {
			return nil, errors.New("database is locked")
		},
	}
	h := NewHistoryHandler(svc, newTestSessions(t), zap.NewNop())

	rec := serve(h.RegisterRoutes, http.MethodGet, "/api/history?user=alice", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database is locked")
}

func TestHistoryHandler_Stats(t *testing.T) {
	svc := &mockHistoryService{
		statsFunc: func(ctx context.Context, username string) (*models.UserStats, error) {
			return &models.UserStats{TotalConversations: 3, TotalCost: 1.5, AvgResponseTimes: map[string]float64{"Typhoon": 2.5}}, nil
		},
	}
	h := NewHistoryHandler(svc, newTestSessions(t), zap.NewNop())

	rec := serve(h.RegisterRoutes, http.MethodGet, "/api/stats?user=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.UserStats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(3), resp.Data.TotalConversations)
	assert.Equal(t, 2.5, resp.Data.AvgResponseTimes["Typhoon"])
}

func TestHistoryHandler_Get(t *testing.T) {
	svc := &mockHistoryService{
		getFunc: func(ctx context.Context, conversationID int64, username string) (*models.Conversation, error) {
			switch conversationID {
			case 1:
				return &models.Conversation{ID: 1, Username: username}, nil
			case 2:
				return nil, apperrors.ErrForbidden
			default:
				return nil, apperrors.ErrNotFound
			}
		},
	}
	h := NewHistoryHandler(svc, newTestSessions(t), zap.NewNop())

	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/api/conversations/1?user=alice", http.StatusOK},
		{"/api/conversations/2?user=alice", http.StatusForbidden},
		{"/api/conversations/3?user=alice", http.StatusNotFound},
		{"/api/conversations/0?user=alice", http.StatusBadRequest},
		{"/api/conversations/1", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(h.RegisterRoutes, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHistoryHandler_UpdateComment(t *testing.T) {
	var gotID int64
	var gotUser, gotComment string
	svc := &mockHistoryService{
		updateCommentFunc: func(ctx context.Context, conversationID int64, username, comment string) error {
			gotID, gotUser, gotComment = conversationID, username, comment
			return nil
		},
	}
	h := NewHistoryHandler(svc, newTestSessions(t), zap.NewNop())

	rec := serve(h.RegisterRoutes, http.MethodPut, "/api/conversations/9/comment?user=alice",
		`{"comment":"The deadline is fifteen days under section 229."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int64(9), gotID)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "The deadline is fifteen days under section 229.", gotComment)

	rec = serve(h.RegisterRoutes, http.MethodPut, "/api/conversations/9/comment?user=alice", `[`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryHandler_Delete(t *testing.T) {
	deleted := map[int64]bool{}
	svc := &mockHistoryService{
		deleteFunc: func(ctx context.Context, conversationID int64, username string) error {
			if username != "alice" {
				return apperrors.ErrForbidden
			}
			deleted[conversationID] = true
			return nil
		},
	}
	h := NewHistoryHandler(svc, newTestSessions(t), zap.NewNop())

	rec := serve(h.RegisterRoutes, http.MethodDelete, "/api/conversations/4?user=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, deleted[4])

	rec = serve(h.RegisterRoutes, http.MethodDelete, "/api/conversations/5?user=bob", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, deleted[5])
}
