package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/repositories"
)

// DefaultHistoryLimit is the number of conversations shown when none is requested.
const DefaultHistoryLimit = 50

// MaxHistoryLimit bounds a single history page.
const MaxHistoryLimit = 500

// HistoryService reads and annotates a user's past conversations.
type HistoryService interface {
	// List returns the user's conversations newest first, optionally
	// filtered by a substring of the question.
	List(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error)
	// Get returns one conversation, only to its owner.
	Get(ctx context.Context, conversationID int64, username string) (*models.Conversation, error)
	Stats(ctx context.Context, username string) (*models.UserStats, error)
	// UpdateComment sets the recommended or corrected answer for a turn.
	// An empty comment clears it.
	UpdateComment(ctx context.Context, conversationID int64, username, comment string) error
	Delete(ctx context.Context, conversationID int64, username string) error
}

type historyService struct {
	convRepo repositories.ConversationRepository
	logger   *zap.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(convRepo repositories.ConversationRepository, logger *zap.Logger) HistoryService {
	return &historyService{
		convRepo: convRepo,
		logger:   logger.Named("history"),
	}
}

var _ HistoryService = (*historyService)(nil)

func (s *historyService) List(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error) {
	if username == "" {
		return nil, apperrors.ErrEmptyUsername
	}
	return s.convRepo.ListByUser(ctx, username, clampLimit(limit), strings.TrimSpace(search))
}

func (s *historyService) Get(ctx context.Context, conversationID int64, username string) (*models.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Username != username {
		return nil, apperrors.ErrForbidden
	}
	return conv, nil
}

func (s *historyService) Stats(ctx context.Context, username string) (*models.UserStats, error) {
	if username == "" {
		return nil, apperrors.ErrEmptyUsername
	}
	return s.convRepo.UserStats(ctx, username)
}

func (s *historyService) UpdateComment(ctx context.Context, conversationID int64, username, comment string) error {
	if username == "" {
		return apperrors.ErrEmptyUsername
	}
	if err := s.convRepo.UpdateComment(ctx, conversationID, username, strings.TrimSpace(comment)); err != nil {
		return err
	}
	s.logger.Debug("Conversation comment updated", zap.Int64("conversation_id", conversationID))
	return nil
}

func (s *historyService) Delete(ctx context.Context, conversationID int64, username string) error {
	if _, err := s.Get(ctx, conversationID, username); err != nil {
		return err
	}
	if err := s.convRepo.Delete(ctx, conversationID); err != nil {
		return err
	}
	s.logger.Info("Conversation deleted", zap.Int64("conversation_id", conversationID))
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
