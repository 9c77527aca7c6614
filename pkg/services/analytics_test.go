package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

func TestParseUserMetadata(t *testing.T) {
	tests := []struct {
		in     string
		role   string
		level  string
		agency string
	}{
		{"Judge (Senior) - Central Administrative Court", "Judge", "Senior", "Central Administrative Court"},
		{"Clerk - Regional Court", "Clerk", "General", "Regional Court"},
		{"ตุลาการ (ชำนาญการ) - ศาลปกครองกลาง", "ตุลาการ", "ชำนาญการ", "ศาลปกครองกลาง"},
		{"alice", "alice", "General", "Unknown"},
		{"", "Unknown", "Unknown", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			role, level, agency := ParseUserMetadata(tt.in)
			assert.Equal(t, tt.role, role)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.agency, agency)
		})
	}
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	tc := setupStoreTest(t)
	ctx := context.Background()
	svc := NewAnalyticsService(tc.analyticsRepo, zap.NewNop())
	feedback := NewFeedbackService(tc.convRepo, tc.feedbackRepo, zap.NewNop())

	jan := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	c1 := tc.createTurn(t, "Judge (Senior) - Central Court", "q1", jan, "Typhoon", "Pathumma")
	c2 := tc.createTurn(t, "Clerk - Regional Court", "q2", feb, "Typhoon", "Pathumma")

	// Typhoon is fastest (1s); Pathumma is rated higher.
	_, err := feedback.Rate(ctx, c1.Responses[0].ID, models.Scores{Satisfaction: 2, Accuracy: 3}, "")
	require.NoError(t, err)
	_, err = feedback.Rate(ctx, c1.Responses[1].ID, models.Scores{Satisfaction: 5}, "great")
	require.NoError(t, err)
	_, err = feedback.Rate(ctx, c2.Responses[1].ID, models.Scores{Satisfaction: 4}, "")
	require.NoError(t, err)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	require.Len(t, dash.Leaderboard, 2)
	assert.Equal(t, "Pathumma", dash.Leaderboard[0].ModelName)
	assert.InDelta(t, 4.5, dash.Leaderboard[0].Satisfaction, 1e-9)
	assert.Equal(t, int64(2), dash.Leaderboard[0].FeedbackCount)
	assert.Equal(t, int64(2), dash.Leaderboard[0].TotalResponses)
	assert.InDelta(t, 2.0, dash.Leaderboard[0].P50TimeSec, 1e-9)
	assert.Equal(t, "Typhoon", dash.Leaderboard[1].ModelName)
	assert.InDelta(t, 2.0, dash.Leaderboard[1].Satisfaction, 1e-9)

	require.NotNil(t, dash.Summary)
	assert.Equal(t, "Pathumma", dash.Summary.BestModel)
	assert.Equal(t, "Typhoon", dash.Summary.FastestModel)
	assert.InDelta(t, 1.0, dash.Summary.FastestTimeSec, 1e-9)

	require.Len(t, dash.Usage, 2)
	assert.Equal(t, "2025-02", dash.Usage[0].Month)
	assert.Equal(t, int64(1), dash.Usage[0].Conversations)

	require.Len(t, dash.FeedbackLog, 3)
	assert.Equal(t, "Clerk", dash.FeedbackLog[0].UserRole, "newest first")
	assert.Equal(t, "General", dash.FeedbackLog[0].UserLevel)
	assert.Equal(t, "Regional Court", dash.FeedbackLog[0].UserAgency)

	assert.Equal(t, map[string]int{"Judge": 1, "Clerk": 1}, dash.Demographics.Roles)
	assert.Len(t, dash.Demographics.Users, 2)
	assert.InDelta(t, 5.0, dash.RolePreference["Judge"]["Pathumma"], 1e-9)
	assert.InDelta(t, 2.0, dash.RolePreference["Judge"]["Typhoon"], 1e-9)
	_, hasTyphoon := dash.RolePreference["Clerk"]["Typhoon"]
	assert.False(t, hasTyphoon, "unrated responses have no preference entry")
}

func TestAnalyticsService_Dashboard_Empty(t *testing.T) {
	tc := setupStoreTest(t)
	svc := NewAnalyticsService(tc.analyticsRepo, zap.NewNop())

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dash.Leaderboard)
	assert.Nil(t, dash.Summary)
	assert.Empty(t, dash.FeedbackLog)
}

func TestBuildLeaderboard_Percentiles(t *testing.T) {
	efficiency := []models.ModelEfficiency{{ModelName: "Typhoon", AvgTimeSec: 3, TotalResponses: 5}}
	var latencies []models.ModelLatency
	for _, v := range []float64{1, 2, 3, 4, 5} {
		latencies = append(latencies, models.ModelLatency{ModelName: "Typhoon", ResponseTime: v})
	}

	board := buildLeaderboard(efficiency, nil, latencies)

	require.Len(t, board, 1)
	assert.InDelta(t, 3.0, board[0].P50TimeSec, 1e-9)
	assert.GreaterOrEqual(t, board[0].P95TimeSec, board[0].P50TimeSec)
	assert.LessOrEqual(t, board[0].P95TimeSec, 5.0)
	assert.Zero(t, board[0].Satisfaction, "unrated models score zero")
}
