package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/repositories"
	"github.com/smartcourt/smartcourt-engine/pkg/testhelpers"
)

// storeTestContext wires real repositories over a temp SQLite database.
type storeTestContext struct {
	convRepo      repositories.ConversationRepository
	feedbackRepo  repositories.FeedbackRepository
	analyticsRepo repositories.AnalyticsRepository
}

func setupStoreTest(t *testing.T) *storeTestContext {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	return &storeTestContext{
		convRepo:      repositories.NewConversationRepository(db),
		feedbackRepo:  repositories.NewFeedbackRepository(db),
		analyticsRepo: repositories.NewAnalyticsRepository(db),
	}
}

// createTurn stores a conversation with one response per model.
// Response i costs 0.01*(i+1) and takes i+1 seconds.
func (tc *storeTestContext) createTurn(t *testing.T, username, question string, ts time.Time, modelNames ...string) *models.Conversation {
	t.Helper()
	conv := &models.Conversation{
		Timestamp:     ts,
		Username:      username,
		Question:      question,
		KnowledgeBase: "Court Manual",
	}
	responses := make([]models.Response, len(modelNames))
	for i, name := range modelNames {
		responses[i] = models.Response{
			ModelName:    name,
			Answer:       "answer from " + name,
			Cost:         0.01 * float64(i+1),
			ResponseTime: float64(i + 1),
		}
	}
	require.NoError(t, tc.convRepo.CreateWithResponses(context.Background(), conv, responses))
	conv.Responses = responses
	return conv
}
