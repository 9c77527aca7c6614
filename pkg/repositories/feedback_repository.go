package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartcourt/smartcourt-engine/pkg/database"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

// FeedbackRepository stores the single rating attached to a response.
type FeedbackRepository interface {
	// Upsert inserts the rating or overwrites every field of the existing one.
	Upsert(ctx context.Context, responseID int64, scores models.Scores, comment string) (*models.Feedback, error)
	GetByResponse(ctx context.Context, responseID int64) (*models.Feedback, error)
}

type feedbackRepository struct {
	db *database.DB
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db *database.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

var _ FeedbackRepository = (*feedbackRepository)(nil)

func (r *feedbackRepository) Upsert(ctx context.Context, responseID int64, scores models.Scores, comment string) (*models.Feedback, error) {
	var commentValue *string
	if comment != "" {
		commentValue = &comment
	}

	now := time.Now().UTC()
	row := models.Feedback{
		ResponseID:        responseID,
		FeedbackType:      models.FeedbackTypeStars,
		ScoreAccuracy:     scores.Accuracy,
		ScoreCompleteness: scores.Completeness,
		ScoreDetail:       scores.Detail,
		ScoreUsefulness:   scores.Usefulness,
		ScoreSatisfaction: scores.Satisfaction,
		Comment:           commentValue,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// One INSERT ... ON CONFLICT statement; created_at keeps its first value.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "response_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"feedback_type",
			"score_accuracy",
			"score_completeness",
			"score_detail",
			"score_usefulness",
			"score_satisfaction",
			"comment",
			"updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert feedback for response %d: %w", responseID, err)
	}

	var saved models.Feedback
	if err := r.db.WithContext(ctx).Where("response_id = ?", responseID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to read feedback for response %d: %w", responseID, err)
	}
	return &saved, nil
}

func (r *feedbackRepository) GetByResponse(ctx context.Context, responseID int64) (*models.Feedback, error) {
	var fb models.Feedback
	err := r.db.WithContext(ctx).Where("response_id = ?", responseID).First(&fb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &fb, nil
}
