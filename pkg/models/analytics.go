package models

import "time"

// Citation is one deduplicated source document returned by retrieval.
type Citation struct {
	Filename string `json:"filename"`
	Preview  string `json:"preview"`
}

// UserStats summarizes usage for a user, or for everyone when the username is empty.
type UserStats struct {
	TotalConversations int64              `json:"total_conversations"`
	TotalCost          float64            `json:"total_cost"`
	AvgResponseTimes   map[string]float64 `json:"avg_response_times"`
}

// ModelQuality is the average rating of a model over its rated responses.
type ModelQuality struct {
	ModelName     string  `json:"model_name"`
	Accuracy      float64 `json:"accuracy"`
	Completeness  float64 `json:"completeness"`
	Detail        float64 `json:"detail"`
	Usefulness    float64 `json:"usefulness"`
	Satisfaction  float64 `json:"satisfaction"`
	FeedbackCount int64   `json:"feedback_count"`
}

// ModelEfficiency aggregates latency, cost, and answer length over all responses.
type ModelEfficiency struct {
	ModelName      string  `json:"model_name"`
	AvgTimeSec     float64 `json:"avg_time_sec"`
	AvgCost        float64 `json:"avg_cost"`
	AvgChars       float64 `json:"avg_chars"`
	TotalResponses int64   `json:"total_responses"`
}

// MonthlyUsage is conversation volume and spend for one YYYY-MM month.
type MonthlyUsage struct {
	Month         string  `json:"month"`
	Conversations int64   `json:"conversations"`
	Cost          float64 `json:"cost"`
}

// FeedbackLogEntry is one rated response joined with its conversation.
type FeedbackLogEntry struct {
	ConversationID    int64     `json:"conversation_id"`
	Username          string    `json:"username"`
	Question          string    `json:"question"`
	ModelName         string    `json:"model_name"`
	ScoreAccuracy     int       `json:"score_accuracy"`
	ScoreCompleteness int       `json:"score_completeness"`
	ScoreDetail       int       `json:"score_detail"`
	ScoreUsefulness   int       `json:"score_usefulness"`
	ScoreSatisfaction int       `json:"score_satisfaction"`
	FeedbackComment   *string   `json:"feedback_comment,omitempty"`
	GlobalComment     *string   `json:"global_comment,omitempty"`
	Timestamp         time.Time `json:"timestamp"`

	// Parsed from Username.
	UserRole   string `gorm:"-" json:"user_role"`
	UserLevel  string `gorm:"-" json:"user_level"`
	UserAgency string `gorm:"-" json:"user_agency"`
}

// ModelLatency is one response's latency, used for percentile computation.
type ModelLatency struct {
	ModelName    string
	ResponseTime float64
}
