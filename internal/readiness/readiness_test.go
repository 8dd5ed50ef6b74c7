package readiness

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

func TestOverview(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/readiness" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"overall_readiness":  62.5,
			"total_attempts":     320,
			"total_correct":      208,
			"overall_accuracy":   0.65,
			"tps_readiness":      70.0,
			"literasi_readiness": 52.0,
			"weakest_section":    "PM",
			"recommended_practice": "PM",
			"section_readiness": map[string]any{
				"PK": map[string]any{
					"section":              "PK",
					"overall_accuracy":     0.7,
					"recent_accuracy":      0.75,
					"readiness_percentage": 68.0,
					"current_theta":        0.4,
					"target_theta":         1.0,
					"predicted_score_low":  610,
					"predicted_score_high": 680,
					"total_attempts":       80,
					"total_correct":        56,
				},
			},
		})
	})

	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.OverallReadiness != 62.5 {
		t.Errorf("overall = %v, want 62.5", ov.OverallReadiness)
	}
	if ov.WeakestSection == nil || *ov.WeakestSection != section.PM {
		t.Errorf("weakest = %v, want PM", ov.WeakestSection)
	}
	pk, ok := ov.SectionReadiness[section.PK]
	if !ok {
		t.Fatal("PK readiness missing")
	}
	if pk.PredictedScoreLow != 610 || pk.PredictedScoreHigh != 680 {
		t.Errorf("predicted range = %d..%d, want 610..680", pk.PredictedScoreLow, pk.PredictedScoreHigh)
	}
}

func TestSectionDetail(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/readiness/LBI" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"section":              "LBI",
			"overall_accuracy":     0.6,
			"recent_accuracy":      0.58,
			"readiness_percentage": 55.0,
			"current_theta":        0.1,
			"target_theta":         0.9,
			"predicted_score_low":  540,
			"predicted_score_high": 600,
			"total_attempts":       40,
			"total_correct":        24,
			"subtype_breakdown": []map[string]any{
				{"sub_type": "main-idea", "total_attempts": 12, "correct_count": 5, "accuracy": 0.42, "is_weak_area": true},
			},
			"next_steps": map[string]any{"is_ready": false, "message": "Latihan 15 soal per hari."},
		})
	})

	d, err := svc.SectionDetail(context.Background(), section.LBI)
	if err != nil {
		t.Fatalf("SectionDetail: %v", err)
	}
	if len(d.SubtypeBreakdown) != 1 || !d.SubtypeBreakdown[0].IsWeakArea {
		t.Errorf("breakdown = %+v, want one weak area", d.SubtypeBreakdown)
	}
	if d.NextSteps == nil || d.NextSteps.IsReady {
		t.Errorf("next steps = %+v, want not ready", d.NextSteps)
	}
}

func TestSectionDetail_RejectsUnknownSection(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})
	if _, err := svc.SectionDetail(context.Background(), section.Section("ZZ")); err == nil {
		t.Fatal("expected error for unknown section")
	}
}
