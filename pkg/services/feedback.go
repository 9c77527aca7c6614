package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/repositories"
)

// FeedbackService records star ratings on individual responses.
type FeedbackService interface {
	// Rate stores the rating for a response, replacing any earlier one.
	// Scores outside 0..5 are rejected with apperrors.ErrInvalidScore.
	Rate(ctx context.Context, responseID int64, scores models.Scores, comment string) (*models.Feedback, error)
	Get(ctx context.Context, responseID int64) (*models.Feedback, error)
}

type feedbackService struct {
	convRepo     repositories.ConversationRepository
	feedbackRepo repositories.FeedbackRepository
	logger       *zap.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(
	convRepo repositories.ConversationRepository,
	feedbackRepo repositories.FeedbackRepository,
	logger *zap.Logger,
) FeedbackService {
	return &feedbackService{
		convRepo:     convRepo,
		feedbackRepo: feedbackRepo,
		logger:       logger.Named("feedback"),
	}
}

var _ FeedbackService = (*feedbackService)(nil)

func (s *feedbackService) Rate(ctx context.Context, responseID int64, scores models.Scores, comment string) (*models.Feedback, error) {
	if err := scores.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.convRepo.GetResponse(ctx, responseID); err != nil {
		return nil, fmt.Errorf("response %d: %w", responseID, err)
	}

	fb, err := s.feedbackRepo.Upsert(ctx, responseID, scores, comment)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Feedback saved",
		zap.Int64("response_id", responseID),
		zap.Int("satisfaction", scores.Satisfaction),
		zap.Bool("rated", scores.Rated()))
	return fb, nil
}

func (s *feedbackService) Get(ctx context.Context, responseID int64) (*models.Feedback, error) {
	return s.feedbackRepo.GetByResponse(ctx, responseID)
}
