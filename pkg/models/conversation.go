package models

import (
	"time"
)

// Conversation is one question turn. Each selected model contributes one Response.
type Conversation struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp     time.Time `gorm:"column:timestamp" json:"timestamp"`
	Username      string    `gorm:"column:username" json:"username"`
	Question      string    `gorm:"column:question" json:"question"`
	KnowledgeBase string    `gorm:"column:knowledge_base" json:"knowledge_base"`

	// UserComment is the user's recommended / corrected answer for the whole turn.
	UserComment *string `gorm:"column:user_comment" json:"user_comment,omitempty"`

	Responses []Response `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"responses,omitempty"`
}

// TableName implements gorm's tabler.
func (Conversation) TableName() string { return "conversations" }

// Comment returns the user comment or "".
func (c *Conversation) Comment() string {
	if c.UserComment == nil {
		return ""
	}
	return *c.UserComment
}

// Response is a single model's answer within a conversation.
type Response struct {
	ID             int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID int64   `gorm:"column:conversation_id" json:"conversation_id"`
	ModelName      string  `gorm:"column:model_name" json:"model_name"`
	Answer         string  `gorm:"column:answer" json:"answer"`
	Cost           float64 `gorm:"column:cost" json:"cost"`
	ResponseTime   float64 `gorm:"column:response_time" json:"response_time"` // seconds

	Feedback *Feedback `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"feedback,omitempty"`
}

// TableName implements gorm's tabler.
func (Response) TableName() string { return "responses" }

// FeedbackTypeStars is written to the legacy feedback_type column, which older
// databases declare NOT NULL.
const FeedbackTypeStars = "stars"

// Feedback holds the five-dimension star rating for one response.
// A score of 0 means the dimension was not rated.
type Feedback struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ResponseID        int64     `gorm:"column:response_id;uniqueIndex" json:"response_id"`
	FeedbackType      string    `gorm:"column:feedback_type" json:"-"`
	ScoreAccuracy     int       `gorm:"column:score_accuracy" json:"score_accuracy"`
	ScoreCompleteness int       `gorm:"column:score_completeness" json:"score_completeness"`
	ScoreDetail       int       `gorm:"column:score_detail" json:"score_detail"`
	ScoreUsefulness   int       `gorm:"column:score_usefulness" json:"score_usefulness"`
	ScoreSatisfaction int       `gorm:"column:score_satisfaction" json:"score_satisfaction"`
	Comment           *string   `gorm:"column:comment" json:"comment,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName implements gorm's tabler.
func (Feedback) TableName() string { return "feedback" }

// Scores returns the rating as a Scores value.
func (f *Feedback) Scores() Scores {
	return Scores{
		Accuracy:     f.ScoreAccuracy,
		Completeness: f.ScoreCompleteness,
		Detail:       f.ScoreDetail,
		Usefulness:   f.ScoreUsefulness,
		Satisfaction: f.ScoreSatisfaction,
	}
}
