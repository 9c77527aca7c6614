package services

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/repositories"
)

// FeedbackLogLimit caps the rows of the full feedback log.
const FeedbackLogLimit = 2000

const (
	unknownMetadata = "Unknown"
	generalLevel    = "General"
)

// userMetadataPattern matches "Role (Level) - Agency" and "Role - Agency".
var userMetadataPattern = regexp.MustCompile(`^(.*?)(?:\s+\((.*?)\))?\s+-\s+(.*)$`)

// ParseUserMetadata splits a display name of the form "Role (Level) - Agency".
// A missing level is "General"; a name that does not match is returned as the
// role with agency "Unknown"; an empty name yields "Unknown" for all three.
func ParseUserMetadata(username string) (role, level, agency string) {
	if username == "" {
		return unknownMetadata, unknownMetadata, unknownMetadata
	}
	m := userMetadataPattern.FindStringSubmatch(username)
	if m == nil {
		return username, generalLevel, unknownMetadata
	}
	role = strings.TrimSpace(m[1])
	level = strings.TrimSpace(m[2])
	if m[2] == "" {
		level = generalLevel
	}
	agency = strings.TrimSpace(m[3])
	return role, level, agency
}

// ModelSummary merges efficiency, quality, and latency percentiles for one model.
type ModelSummary struct {
	ModelName      string  `json:"model_name"`
	Accuracy       float64 `json:"accuracy"`
	Completeness   float64 `json:"completeness"`
	Detail         float64 `json:"detail"`
	Usefulness     float64 `json:"usefulness"`
	Satisfaction   float64 `json:"satisfaction"`
	FeedbackCount  int64   `json:"feedback_count"`
	AvgTimeSec     float64 `json:"avg_time_sec"`
	P50TimeSec     float64 `json:"p50_time_sec"`
	P95TimeSec     float64 `json:"p95_time_sec"`
	AvgCost        float64 `json:"avg_cost"`
	AvgChars       float64 `json:"avg_chars"`
	TotalResponses int64   `json:"total_responses"`
}

// UserProfile is one distinct user seen in the feedback log.
type UserProfile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Level    string `json:"level"`
	Agency   string `json:"agency"`
}

// Demographics counts distinct raters by role and by agency.
type Demographics struct {
	Roles    map[string]int `json:"roles"`
	Agencies map[string]int `json:"agencies"`
	Users    []UserProfile  `json:"users"`
}

// Summary names the highest-rated and the fastest model.
type Summary struct {
	BestModel        string  `json:"best_model"`
	BestSatisfaction float64 `json:"best_satisfaction"`
	FastestModel     string  `json:"fastest_model"`
	FastestTimeSec   float64 `json:"fastest_time_sec"`
}

// Dashboard is the complete admin analytics view.
type Dashboard struct {
	Leaderboard    []ModelSummary                `json:"leaderboard"`
	Usage          []models.MonthlyUsage         `json:"usage"`
	FeedbackLog    []models.FeedbackLogEntry     `json:"feedback_log"`
	Demographics   Demographics                  `json:"demographics"`
	RolePreference map[string]map[string]float64 `json:"role_preference"`
	Summary        *Summary                      `json:"summary,omitempty"`
}

// AnalyticsService computes the admin dashboard.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	// FeedbackLog returns rated responses newest first with parsed demographics.
	FeedbackLog(ctx context.Context, limit int) ([]models.FeedbackLogEntry, error)
}

type analyticsService struct {
	repo   repositories.AnalyticsRepository
	logger *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo repositories.AnalyticsRepository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger.Named("analytics"),
	}
}

var _ AnalyticsService = (*analyticsService)(nil)

func (s *analyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	efficiency, err := s.repo.Efficiency(ctx)
	if err != nil {
		return nil, err
	}
	quality, err := s.repo.Quality(ctx)
	if err != nil {
		return nil, err
	}
	latencies, err := s.repo.Latencies(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := s.repo.MonthlyUsage(ctx)
	if err != nil {
		return nil, err
	}
	log, err := s.FeedbackLog(ctx, FeedbackLogLimit)
	if err != nil {
		return nil, err
	}

	leaderboard := buildLeaderboard(efficiency, quality, latencies)
	dashboard := &Dashboard{
		Leaderboard:    leaderboard,
		Usage:          usage,
		FeedbackLog:    log,
		Demographics:   buildDemographics(log),
		RolePreference: buildRolePreference(log),
		Summary:        buildSummary(leaderboard),
	}

	s.logger.Debug("Dashboard computed",
		zap.Int("models", len(leaderboard)),
		zap.Int("feedback_rows", len(log)))
	return dashboard, nil
}

func (s *analyticsService) FeedbackLog(ctx context.Context, limit int) ([]models.FeedbackLogEntry, error) {
	if limit <= 0 || limit > FeedbackLogLimit {
		limit = FeedbackLogLimit
	}
	log, err := s.repo.FeedbackLog(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range log {
		log[i].UserRole, log[i].UserLevel, log[i].UserAgency = ParseUserMetadata(log[i].Username)
	}
	return log, nil
}

// buildLeaderboard left-joins quality onto efficiency (unrated models score 0)
// and sorts by satisfaction, highest first.
func buildLeaderboard(efficiency []models.ModelEfficiency, quality []models.ModelQuality, latencies []models.ModelLatency) []ModelSummary {
	qualityByModel := make(map[string]models.ModelQuality, len(quality))
	for _, q := range quality {
		qualityByModel[q.ModelName] = q
	}
	samples := make(map[string]stats.Float64Data)
	for _, l := range latencies {
		samples[l.ModelName] = append(samples[l.ModelName], l.ResponseTime)
	}

	board := make([]ModelSummary, 0, len(efficiency))
	for _, e := range efficiency {
		q := qualityByModel[e.ModelName]
		summary := ModelSummary{
			ModelName:      e.ModelName,
			Accuracy:       q.Accuracy,
			Completeness:   q.Completeness,
			Detail:         q.Detail,
			Usefulness:     q.Usefulness,
			Satisfaction:   q.Satisfaction,
			FeedbackCount:  q.FeedbackCount,
			AvgTimeSec:     e.AvgTimeSec,
			AvgCost:        e.AvgCost,
			AvgChars:       e.AvgChars,
			TotalResponses: e.TotalResponses,
		}
		if data := samples[e.ModelName]; len(data) > 0 {
			summary.P50TimeSec, _ = stats.Median(data)
			summary.P95TimeSec, _ = stats.Percentile(data, 95)
		}
		board = append(board, summary)
	}

	sort.SliceStable(board, func(i, j int) bool {
		if board[i].Satisfaction != board[j].Satisfaction {
			return board[i].Satisfaction > board[j].Satisfaction
		}
		return board[i].ModelName < board[j].ModelName
	})
	return board
}

func buildSummary(board []ModelSummary) *Summary {
	if len(board) == 0 {
		return nil
	}
	summary := &Summary{
		BestModel:        board[0].ModelName,
		BestSatisfaction: board[0].Satisfaction,
		FastestModel:     board[0].ModelName,
		FastestTimeSec:   board[0].AvgTimeSec,
	}
	for _, m := range board[1:] {
		if m.AvgTimeSec < summary.FastestTimeSec {
			summary.FastestModel = m.ModelName
			summary.FastestTimeSec = m.AvgTimeSec
		}
	}
	return summary
}

func buildDemographics(log []models.FeedbackLogEntry) Demographics {
	d := Demographics{
		Roles:    map[string]int{},
		Agencies: map[string]int{},
		Users:    []UserProfile{},
	}
	seen := make(map[string]bool)
	for _, e := range log {
		if seen[e.Username] {
			continue
		}
		seen[e.Username] = true
		d.Roles[e.UserRole]++
		d.Agencies[e.UserAgency]++
		d.Users = append(d.Users, UserProfile{
			Username: e.Username,
			Role:     e.UserRole,
			Level:    e.UserLevel,
			Agency:   e.UserAgency,
		})
	}
	return d
}

// buildRolePreference averages satisfaction per role and model. Unrated
// satisfaction (0) is excluded from the average.
func buildRolePreference(log []models.FeedbackLogEntry) map[string]map[string]float64 {
	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[string]map[string]*acc)
	for _, e := range log {
		if e.ScoreSatisfaction == 0 {
			continue
		}
		byModel, ok := sums[e.UserRole]
		if !ok {
			byModel = make(map[string]*acc)
			sums[e.UserRole] = byModel
		}
		a, ok := byModel[e.ModelName]
		if !ok {
			a = &acc{}
			byModel[e.ModelName] = a
		}
		a.sum += float64(e.ScoreSatisfaction)
		a.count++
	}

	pref := make(map[string]map[string]float64, len(sums))
	for role, byModel := range sums {
		pref[role] = make(map[string]float64, len(byModel))
		for model, a := range byModel {
			pref[role][model] = a.sum / float64(a.count)
		}
	}
	return pref
}
