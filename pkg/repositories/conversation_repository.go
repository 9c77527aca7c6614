package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/database"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

// ConversationRepository provides data access for conversations and their responses.
type ConversationRepository interface {
	// CreateWithResponses inserts the conversation and then its responses.
	// The two inserts are separate statements; a failure between them can
	// leave a conversation without responses.
	CreateWithResponses(ctx context.Context, conv *models.Conversation, responses []models.Response) error
	UpdateComment(ctx context.Context, conversationID int64, username, comment string) error
	GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error)
	GetResponse(ctx context.Context, responseID int64) (*models.Response, error)
	GetResponseID(ctx context.Context, conversationID int64, modelName string) (int64, error)
	ListByUser(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error)
	ListAll(ctx context.Context, limit int) ([]*models.Conversation, error)
	Delete(ctx context.Context, conversationID int64) error
	UserStats(ctx context.Context, username string) (*models.UserStats, error)
}

type conversationRepository struct {
	db *database.DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *database.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

var _ ConversationRepository = (*conversationRepository)(nil)

func (r *conversationRepository) CreateWithResponses(ctx context.Context, conv *models.Conversation, responses []models.Response) error {
	if conv.Timestamp.IsZero() {
		conv.Timestamp = time.Now().UTC()
	}

	// Responses are inserted explicitly below, not through the association.
	conv.Responses = nil
	if err := r.db.WithContext(ctx).Omit("Responses").Create(conv).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	if len(responses) == 0 {
		return nil
	}
	for i := range responses {
		responses[i].ConversationID = conv.ID
	}
	if err := r.db.WithContext(ctx).Omit("Feedback").Create(&responses).Error; err != nil {
		return fmt.Errorf("failed to create responses for conversation %d: %w", conv.ID, err)
	}

	conv.Responses = responses
	return nil
}

func (r *conversationRepository) UpdateComment(ctx context.Context, conversationID int64, username, comment string) error {
	var conv models.Conversation
	err := r.db.WithContext(ctx).Select("id", "username").First(&conv, conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv.Username != username {
		return apperrors.ErrForbidden
	}

	var value *string
	if comment != "" {
		value = &comment
	}
	err = r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ? AND username = ?", conversationID, username).
		Update("user_comment", value).Error
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	var conv models.Conversation
	err := withResponses(r.db.WithContext(ctx)).First(&conv, conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (r *conversationRepository) GetResponse(ctx context.Context, responseID int64) (*models.Response, error) {
	var resp models.Response
	err := r.db.WithContext(ctx).Preload("Feedback").First(&resp, responseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return &resp, nil
}

func (r *conversationRepository) GetResponseID(ctx context.Context, conversationID int64, modelName string) (int64, error) {
	var resp models.Response
	err := r.db.WithContext(ctx).Select("id").
		Where("conversation_id = ? AND model_name = ?", conversationID, modelName).
		Order("id").
		First(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get response id: %w", err)
	}
	return resp.ID, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error) {
	query := withResponses(r.db.WithContext(ctx)).Where("username = ?", username)
	if search != "" {
		query = query.Where("instr(question, ?) > 0", search)
	}

	var convs []*models.Conversation
	if err := newestFirst(query, limit).Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (r *conversationRepository) ListAll(ctx context.Context, limit int) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	if err := newestFirst(withResponses(r.db.WithContext(ctx)), limit).Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// Delete removes a conversation. Responses and feedback go with it through
// ON DELETE CASCADE.
func (r *conversationRepository) Delete(ctx context.Context, conversationID int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Conversation{}, conversationID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *conversationRepository) UserStats(ctx context.Context, username string) (*models.UserStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.UserStats{AvgResponseTimes: make(map[string]float64)}

	convQuery := db.Model(&models.Conversation{})
	if username != "" {
		convQuery = convQuery.Where("username = ?", username)
	}
	if err := convQuery.Count(&stats.TotalConversations).Error; err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}

	joined := func() *gorm.DB {
		q := db.Table("responses AS r").Joins("JOIN conversations c ON r.conversation_id = c.id")
		if username != "" {
			q = q.Where("c.username = ?", username)
		}
		return q
	}

	if err := joined().Select("COALESCE(SUM(r.cost), 0)").Scan(&stats.TotalCost).Error; err != nil {
		return nil, fmt.Errorf("failed to sum cost: %w", err)
	}

	var rows []struct {
		ModelName string
		AvgTime   float64
	}
	err := joined().
		Select("r.model_name AS model_name, AVG(r.response_time) AS avg_time").
		Group("r.model_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to average response times: %w", err)
	}
	for _, row := range rows {
		stats.AvgResponseTimes[row.ModelName] = row.AvgTime
	}

	return stats, nil
}

// withResponses preloads responses in insertion order with their feedback.
func withResponses(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Responses", func(tx *gorm.DB) *gorm.DB { return tx.Order("responses.id") }).
		Preload("Responses.Feedback")
}

func newestFirst(db *gorm.DB, limit int) *gorm.DB {
	db = db.Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db
}
