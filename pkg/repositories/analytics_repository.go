package repositories

import (
	"context"
	"fmt"

	"github.com/smartcourt/smartcourt-engine/pkg/database"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

// AnalyticsRepository runs the read-only aggregate queries behind the admin dashboard.
type AnalyticsRepository interface {
	Quality(ctx context.Context) ([]models.ModelQuality, error)
	Efficiency(ctx context.Context) ([]models.ModelEfficiency, error)
	MonthlyUsage(ctx context.Context) ([]models.MonthlyUsage, error)
	FeedbackLog(ctx context.Context, limit int) ([]models.FeedbackLogEntry, error)
	Latencies(ctx context.Context) ([]models.ModelLatency, error)
}

type analyticsRepository struct {
	db *database.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(db *database.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

var _ AnalyticsRepository = (*analyticsRepository)(nil)

// Quality averages each dimension over rated values only; a 0 score means
// "not rated" and is excluded from that dimension's average.
func (r *analyticsRepository) Quality(ctx context.Context) ([]models.ModelQuality, error) {
	query := `
		SELECT
			r.model_name AS model_name,
			COALESCE(AVG(NULLIF(f.score_accuracy, 0)), 0) AS accuracy,
			COALESCE(AVG(NULLIF(f.score_completeness, 0)), 0) AS completeness,
			COALESCE(AVG(NULLIF(f.score_detail, 0)), 0) AS detail,
			COALESCE(AVG(NULLIF(f.score_usefulness, 0)), 0) AS usefulness,
			COALESCE(AVG(NULLIF(f.score_satisfaction, 0)), 0) AS satisfaction,
			COUNT(f.id) AS feedback_count
		FROM responses r
		JOIN feedback f ON r.id = f.response_id
		GROUP BY r.model_name
		ORDER BY r.model_name`

	var rows []models.ModelQuality
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query model quality: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) Efficiency(ctx context.Context) ([]models.ModelEfficiency, error) {
	query := `
		SELECT
			model_name,
			AVG(response_time) AS avg_time_sec,
			AVG(cost) AS avg_cost,
			AVG(LENGTH(answer)) AS avg_chars,
			COUNT(id) AS total_responses
		FROM responses
		GROUP BY model_name
		ORDER BY model_name`

	var rows []models.ModelEfficiency
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query model efficiency: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) MonthlyUsage(ctx context.Context) ([]models.MonthlyUsage, error) {
	query := `
		SELECT
			strftime('%Y-%m', c.timestamp) AS month,
			COUNT(DISTINCT c.id) AS conversations,
			COALESCE(SUM(r.cost), 0) AS cost
		FROM conversations c
		JOIN responses r ON c.id = r.conversation_id
		GROUP BY month
		ORDER BY month DESC`

	var rows []models.MonthlyUsage
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query monthly usage: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) FeedbackLog(ctx context.Context, limit int) ([]models.FeedbackLogEntry, error) {
	query := `
		SELECT
			c.id AS conversation_id,
			c.username,
			c.question,
			r.model_name,
			f.score_accuracy,
			f.score_completeness,
			f.score_detail,
			f.score_usefulness,
			f.score_satisfaction,
			f.comment AS feedback_comment,
			c.user_comment AS global_comment,
			c.timestamp
		FROM responses r
		JOIN feedback f ON r.id = f.response_id
		JOIN conversations c ON r.conversation_id = c.id
		ORDER BY c.timestamp DESC, f.id DESC
		LIMIT ?`

	var rows []models.FeedbackLogEntry
	if err := r.db.WithContext(ctx).Raw(query, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query feedback log: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) Latencies(ctx context.Context) ([]models.ModelLatency, error) {
	var rows []models.ModelLatency
	err := r.db.WithContext(ctx).
		Table("responses").
		Select("model_name, response_time").
		Order("model_name, id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query latencies: %w", err)
	}
	return rows, nil
}
