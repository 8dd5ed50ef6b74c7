package api

import "testing"

func TestValidate_AttemptWithJob(t *testing.T) {
	raw := []byte(`{
		"id": "a-1",
		"question_id": "q-1",
		"selected_answer": "C",
		"is_correct": true,
		"time_spent_seconds": 42,
		"user_theta_before": 0.1,
		"user_theta_after": 0.15,
		"theta_change": 0.05,
		"feedback_generated": false,
		"session_id": "s-1",
		"created_at": "2026-01-01T00:00:00Z",
		"job": {"job_id": "j-1", "status": "processing", "estimated_completion_seconds": 10, "check_status_url": "/api/v1/jobs/j-1/check"}
	}`)
	if err := Validate(SchemaAttempt, raw); err != nil {
		t.Errorf("valid attempt rejected: %v", err)
	}
}

func TestValidate_AttemptRejectsBadAnswer(t *testing.T) {
	raw := []byte(`{
		"id": "a-1",
		"question_id": "q-1",
		"selected_answer": "F",
		"is_correct": true,
		"time_spent_seconds": 42,
		"created_at": "2026-01-01T00:00:00Z"
	}`)
	if err := Validate(SchemaAttempt, raw); err == nil {
		t.Error("answer F should not validate")
	}
}

func TestValidate_SessionNullableSection(t *testing.T) {
	raw := []byte(`{
		"id": "s-1",
		"started_at": "2026-01-01T00:00:00Z",
		"ended_at": null,
		"duration_minutes": null,
		"questions_attempted": 0,
		"questions_correct": 0,
		"accuracy_in_session": null,
		"section": null
	}`)
	if err := Validate(SchemaSession, raw); err != nil {
		t.Errorf("mixed-section session rejected: %v", err)
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	if err := Validate("nope", []byte(`{}`)); err == nil {
		t.Error("expected unknown-schema error")
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	if err := Validate(SchemaSession, []byte(`{`)); err == nil {
		t.Error("expected JSON parse error")
	}
}
