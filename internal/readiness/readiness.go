// Package readiness fetches exam-readiness metrics: how close the user
// is to their target ability per section and overall.
package readiness

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/section"
)

// SectionReadiness is one section's readiness snapshot.
type SectionReadiness struct {
	Section             section.Section `json:"section"`
	OverallAccuracy     float64         `json:"overall_accuracy"`
	RecentAccuracy      float64         `json:"recent_accuracy"`
	ReadinessPercentage float64         `json:"readiness_percentage"`
	CurrentTheta        float64         `json:"current_theta"`
	TargetTheta         float64         `json:"target_theta"`
	PredictedScoreLow   int             `json:"predicted_score_low"`
	PredictedScoreHigh  int             `json:"predicted_score_high"`
	DaysToReady         *int            `json:"days_to_ready"`
	ReadyByDate         *string         `json:"ready_by_date"`
	TotalAttempts       int             `json:"total_attempts"`
	TotalCorrect        int             `json:"total_correct"`
	ImprovementPerWeek  *float64        `json:"improvement_rate_per_week"`
	AvgTimeSeconds      *float64        `json:"avg_time_seconds"`
	LastPracticed       *time.Time      `json:"last_practiced"`
}

// SubtypeAccuracy is the per-subtype breakdown within a section.
type SubtypeAccuracy struct {
	SubType       string  `json:"sub_type"`
	TotalAttempts int     `json:"total_attempts"`
	CorrectCount  int     `json:"correct_count"`
	Accuracy      float64 `json:"accuracy"`
	IsWeakArea    bool    `json:"is_weak_area"`
}

// TrendPoint is one day on the accuracy chart.
type TrendPoint struct {
	Date     string  `json:"date"`
	Accuracy float64 `json:"accuracy"`
	Attempts int     `json:"attempts"`
}

// NextSteps is the server's study recommendation for a section.
type NextSteps struct {
	IsReady                 bool    `json:"is_ready"`
	Message                 string  `json:"message"`
	EstimatedCompletionDate *string `json:"estimated_completion_date"`
	SuggestedDailyPractice  *int    `json:"suggested_daily_practice"`
}

// SectionDetail extends the snapshot with breakdowns and trends.
type SectionDetail struct {
	SectionReadiness
	SubtypeBreakdown []SubtypeAccuracy `json:"subtype_breakdown"`
	AccuracyTrend    []TrendPoint      `json:"accuracy_trend"`
	NextSteps        *NextSteps        `json:"next_steps"`
}

// Overview aggregates readiness across all seven sections.
type Overview struct {
	OverallReadiness   float64                              `json:"overall_readiness"`
	TotalAttempts      int                                  `json:"total_attempts"`
	TotalCorrect       int                                  `json:"total_correct"`
	OverallAccuracy    float64                              `json:"overall_accuracy"`
	SectionReadiness   map[section.Section]SectionReadiness `json:"section_readiness"`
	TPSReadiness       float64                              `json:"tps_readiness"`
	LiterasiReadiness  float64                              `json:"literasi_readiness"`
	WeakestSection     *section.Section                     `json:"weakest_section"`
	StrongestSection   *section.Section                     `json:"strongest_section"`
	RecommendedSection *section.Section                     `json:"recommended_practice"`
}

// Service fetches readiness data for the dashboard screens.
type Service struct {
	client *api.Client
}

// NewService creates a readiness service on top of the shared client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Overview fetches the all-sections dashboard view.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	_, err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/readiness",
		Out:    &out,
		Schema: api.SchemaReadiness,
	})
	if err != nil {
		return nil, fmt.Errorf("readiness overview: %w", err)
	}
	return &out, nil
}

// SectionDetail fetches one section's drill-down view.
func (s *Service) SectionDetail(ctx context.Context, sec section.Section) (*SectionDetail, error) {
	if !sec.Valid() {
		return nil, fmt.Errorf("section detail: unknown section %q", sec)
	}
	var out SectionDetail
	_, err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/readiness/" + url.PathEscape(string(sec)),
		Out:    &out,
		Schema: api.SchemaSectionDetail,
	})
	if err != nil {
		return nil, fmt.Errorf("section detail: %w", err)
	}
	return &out, nil
}

// UpdateTarget adjusts a section's target theta, bounded to [-3,3]
// server-side.
func (s *Service) UpdateTarget(ctx context.Context, sec section.Section, targetTheta float64) (*SectionReadiness, error) {
	if !sec.Valid() {
		return nil, fmt.Errorf("update target: unknown section %q", sec)
	}
	var out SectionReadiness
	_, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   "/api/v1/readiness/" + url.PathEscape(string(sec)),
		Body:   map[string]any{"target_theta": targetTheta},
		Out:    &out,
	})
	if err != nil {
		return nil, fmt.Errorf("update target: %w", err)
	}
	return &out, nil
}
