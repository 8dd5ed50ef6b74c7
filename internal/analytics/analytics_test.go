package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/auth"
	"github.com/gentaprep/genta-tui/internal/section"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(api.New(srv.URL, auth.StaticToken("tok")))
}

func TestProgress(t *testing.T) {
	var gotQuery string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{
			"period_days":               30,
			"total_questions_attempted": 120,
			"total_correct":             84,
			"average_accuracy":          0.7,
			"accuracy_trend": []map[string]any{
				{"date": "2026-01-09", "accuracy": 0.66, "attempts": 15},
			},
			"section_breakdown": []map[string]any{
				{"section": "PU", "section_name": "Penalaran Umum", "attempts": 40, "correct": 30, "accuracy": 0.75, "avg_time_seconds": 52.0},
			},
			"improvement_this_week": 0.04,
		})
	})

	sec := section.PU
	p, err := svc.Progress(context.Background(), Month, &sec)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if gotQuery != "days=30&section=PU" {
		t.Errorf("query = %q, want days=30&section=PU", gotQuery)
	}
	if p.TotalQuestionsAttempted != 120 || p.AverageAccuracy != 0.7 {
		t.Errorf("progress = %+v", p)
	}
	if len(p.AccuracyTrend) != 1 || p.AccuracyTrend[0].Attempts != 15 {
		t.Errorf("trend = %+v", p.AccuracyTrend)
	}
}

func TestProgress_RejectsOddWindow(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})
	if _, err := svc.Progress(context.Background(), Window(14), nil); err == nil {
		t.Fatal("expected error for unsupported window")
	}
}
