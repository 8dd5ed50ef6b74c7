// Package analytics fetches progress analytics over rolling windows.
package analytics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/section"
)

// Window is a supported analytics period in days.
type Window int

const (
	Week    Window = 7
	Month   Window = 30
	Quarter Window = 90
)

// Valid reports whether the window is one the backend accepts.
func (w Window) Valid() bool {
	return w == Week || w == Month || w == Quarter
}

// TrendPoint is one day on the accuracy chart.
type TrendPoint struct {
	Date     string  `json:"date"`
	Accuracy float64 `json:"accuracy"`
	Attempts int     `json:"attempts"`
}

// SectionBreakdown is one section's share of the period.
type SectionBreakdown struct {
	Section        string  `json:"section"`
	SectionName    string  `json:"section_name"`
	Attempts       int     `json:"attempts"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
	AvgTimeSeconds float64 `json:"avg_time_seconds"`
}

// Progress is the analytics payload for one period.
type Progress struct {
	PeriodDays              int                `json:"period_days"`
	TotalQuestionsAttempted int                `json:"total_questions_attempted"`
	TotalCorrect            int                `json:"total_correct"`
	AverageAccuracy         float64            `json:"average_accuracy"`
	AccuracyTrend           []TrendPoint       `json:"accuracy_trend"`
	SectionBreakdown        []SectionBreakdown `json:"section_breakdown"`
	ImprovementThisWeek     float64            `json:"improvement_this_week"`
}

// Service fetches progress analytics.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Progress fetches the analytics for one window, optionally narrowed to a
// single section.
func (s *Service) Progress(ctx context.Context, w Window, sec *section.Section) (*Progress, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("progress: window must be 7, 30 or 90 days, got %d", int(w))
	}
	q := url.Values{}
	q.Set("days", strconv.Itoa(int(w)))
	if sec != nil {
		if !sec.Valid() {
			return nil, fmt.Errorf("progress: unknown section %q", *sec)
		}
		q.Set("section", string(*sec))
	}
	var out Progress
	_, err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/analytics/progress",
		Query:  q,
		Out:    &out,
		Schema: api.SchemaProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}
	return &out, nil
}
