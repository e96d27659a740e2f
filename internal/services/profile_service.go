// Package services – ProfileService
//
// ProfileService reads and edits the student profile that personalises the
// tutor, and applies plan changes coming from the (mocked) payment flow.
// Profiles are created lazily with minimal defaults on first access.
package services

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/repo"
)

const (
	minAge       = 5
	maxAge       = 100
	maxInterests = 20
)

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName            *string   `json:"full_name"`
	Age                 *int      `json:"age"`
	Grade               *string   `json:"grade"`
	Interests           *[]string `json:"interests"`
	OtherInterests      *string   `json:"other_interests"`
	LearningPreferences *[]string `json:"learning_preferences"`
	Challenges          *string   `json:"challenges"`
	StudyGoals          *string   `json:"study_goals"`
	SchoolName          *string   `json:"school_name"`
	Province            *string   `json:"province"`
	City                *string   `json:"city"`

	// CompleteOnboarding marks onboarding done; every required field must
	// then be present after the edit.
	CompleteOnboarding bool `json:"complete_onboarding"`
}

// ModeAvailability tells whether a mode is open on the caller's plan.
type ModeAvailability struct {
	Mode      domain.Mode `json:"mode"`
	Available bool        `json:"available"`
}

// ProfileService manages student profiles and plans.
type ProfileService struct {
	DB *gorm.DB
}

// Get returns the profile of userID, creating it on first access.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return repo.EnsureProfile(ctx, s.DB, userID)
}

// Update applies u to the profile of userID and returns the stored result.
// Invalid input yields a *ValidationError and nothing is written.
func (s *ProfileService) Update(ctx context.Context, userID string, u ProfileUpdate) (*domain.Profile, error) {
	ctx, span := otel.Tracer("services/ProfileService").Start(ctx, "Update",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	p, err := repo.EnsureProfile(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	if u.FullName != nil {
		name := strings.TrimSpace(*u.FullName)
		if name == "" {
			return nil, invalid("full_name", "must not be empty")
		}
		p.FullName = clipRunes(name, 255)
	}
	if u.Age != nil {
		if *u.Age < minAge || *u.Age > maxAge {
			return nil, invalid("age", "must be between 5 and 100")
		}
		p.Age = *u.Age
	}
	if u.Grade != nil {
		grade := strings.TrimSpace(*u.Grade)
		if grade == "" {
			return nil, invalid("grade", "must not be empty")
		}
		p.Grade = clipRunes(grade, 64)
	}
	if u.Interests != nil {
		interests := cleanList(*u.Interests)
		if len(interests) > maxInterests {
			return nil, invalid("interests", "at most 20 entries")
		}
		p.Interests = interests
	}
	if u.LearningPreferences != nil {
		p.LearningPreferences = cleanList(*u.LearningPreferences)
	}
	setText(&p.OtherInterests, u.OtherInterests)
	setText(&p.Challenges, u.Challenges)
	setText(&p.StudyGoals, u.StudyGoals)
	setText(&p.SchoolName, u.SchoolName)
	setText(&p.Province, u.Province)
	setText(&p.City, u.City)

	if u.CompleteOnboarding {
		if err := onboardingReady(p); err != nil {
			return nil, err
		}
		p.OnboardingCompleted = true
	}

	if err := repo.SaveProfile(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ChangePlan switches the plan of userID. Unknown plans are a validation
// error.
func (s *ProfileService) ChangePlan(ctx context.Context, userID, plan string) (*domain.Profile, error) {
	pl, ok := domain.ParsePlan(plan)
	if !ok {
		return nil, invalid("plan", "unknown plan")
	}
	if _, err := repo.EnsureProfile(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if err := repo.SetProfilePlan(ctx, s.DB, userID, pl); err != nil {
		return nil, err
	}
	return repo.GetProfileByUser(ctx, s.DB, userID)
}

// Modes lists every study mode and whether the plan of userID opens it.
func (s *ProfileService) Modes(ctx context.Context, userID string) (domain.Plan, []ModeAvailability, error) {
	p, err := repo.EnsureProfile(ctx, s.DB, userID)
	if err != nil {
		return "", nil, err
	}
	plan := p.EffectivePlan()
	out := lo.Map(domain.AllModes, func(m domain.Mode, _ int) ModeAvailability {
		return ModeAvailability{Mode: m, Available: plan.Allows(m)}
	})
	return plan, out, nil
}

func onboardingReady(p *domain.Profile) error {
	switch {
	case strings.TrimSpace(p.FullName) == "":
		return invalid("full_name", "required to complete onboarding")
	case p.Age < minAge || p.Age > maxAge:
		return invalid("age", "required to complete onboarding")
	case strings.TrimSpace(p.Grade) == "":
		return invalid("grade", "required to complete onboarding")
	case len(p.Interests) == 0:
		return invalid("interests", "required to complete onboarding")
	}
	return nil
}

// cleanList trims entries, drops blanks and keeps the first occurrence of
// each value.
func cleanList(in []string) []string {
	trimmed := lo.FilterMap(in, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	return lo.Uniq(trimmed)
}

func setText(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
