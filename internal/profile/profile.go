// Package profile manages the signed-in user's account and study plan.
package profile

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/section"
)

// User is the account record. Identity and subscription fields are
// read-only from the client's perspective; only the study plan is
// editable.
type User struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	FullName             *string    `json:"fullName"`
	AvatarURL            *string    `json:"avatarUrl"`
	SubscriptionTier     string     `json:"subscriptionTier"`
	IsSubscriptionActive bool       `json:"isSubscriptionActive"`
	IRTTheta             *float64   `json:"irtTheta"`
	TargetPTN            *string    `json:"targetPtn"`
	TargetScore          *int       `json:"targetScore"`
	ExamDate             *time.Time `json:"examDate"`
	StudyHoursPerWeek    *int       `json:"studyHoursPerWeek"`
	OnboardingCompleted  bool       `json:"onboardingCompleted"`
	LastLogin            *time.Time `json:"lastLogin"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// UpdateInput is a partial profile update; nil fields are left untouched.
type UpdateInput struct {
	FullName          *string    `json:"fullName,omitempty"`
	TargetPTN         *string    `json:"targetPtn,omitempty"`
	TargetScore       *int       `json:"targetScore,omitempty"`
	ExamDate          *time.Time `json:"examDate,omitempty"`
	StudyHoursPerWeek *int       `json:"studyHoursPerWeek,omitempty"`
}

// OnboardingInput completes first-run setup with the study plan.
type OnboardingInput struct {
	TargetPTN         *string    `json:"targetPtn,omitempty"`
	TargetScore       *int       `json:"targetScore,omitempty"`
	ExamDate          *time.Time `json:"examDate,omitempty"`
	StudyHoursPerWeek *int       `json:"studyHoursPerWeek,omitempty"`
}

// InitialSectionReadiness is the baseline estimate assigned at onboarding.
type InitialSectionReadiness struct {
	ReadinessPercentage float64 `json:"readiness_percentage"`
	PredictedScoreLow   int     `json:"predicted_score_low"`
	PredictedScoreHigh  int     `json:"predicted_score_high"`
}

// OnboardingResult confirms the saved plan plus per-section baselines.
type OnboardingResult struct {
	ID                  string                                      `json:"id"`
	OnboardingCompleted bool                                        `json:"onboarding_completed"`
	TargetPTN           *string                                     `json:"target_ptn"`
	TargetScore         *int                                        `json:"target_score"`
	ExamDate            *time.Time                                  `json:"exam_date"`
	StudyHoursPerWeek   *int                                        `json:"study_hours_per_week"`
	InitialReadiness    map[section.Section]InitialSectionReadiness `json:"initial_readiness"`
}

// Service wraps the profile endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Me fetches the signed-in user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	var out User
	_, err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/users/me",
		Out:    &out,
		Schema: api.SchemaUser,
	})
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &out, nil
}

// Update applies a partial profile update and returns the new record.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*User, error) {
	var out User
	_, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPut,
		Path:   "/api/v1/users/me",
		Body:   in,
		Out:    &out,
		Schema: api.SchemaUser,
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &out, nil
}

// CompleteOnboarding saves the study plan and returns the baseline
// readiness the server assigned per section.
func (s *Service) CompleteOnboarding(ctx context.Context, in OnboardingInput) (*OnboardingResult, error) {
	var out OnboardingResult
	_, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/users/onboarding",
		Body:   in,
		Out:    &out,
	})
	if err != nil {
		return nil, fmt.Errorf("complete onboarding: %w", err)
	}
	return &out, nil
}
