package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Mode is the study mode a conversation runs in.
type Mode string

const (
	ModeQuickDoubt   Mode = "quick_doubt"
	ModeExamPrep     Mode = "exam_prep"
	ModeRevision     Mode = "revision"
	ModeFreeLearning Mode = "free_learning"
)

// AllModes lists every mode in display order.
var AllModes = []Mode{ModeQuickDoubt, ModeExamPrep, ModeRevision, ModeFreeLearning}

// ParseMode maps a raw string to a Mode. Matching ignores case and
// surrounding whitespace.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllModes {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Plan is the subscription tier of a profile.
type Plan string

const (
	PlanFree        Plan = "free"
	PlanStudent     Plan = "student"
	PlanStudentPlus Plan = "student_plus"
	PlanFamily      Plan = "family"
)

// ParsePlan maps a raw string to a Plan.
func ParsePlan(s string) (Plan, bool) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanFree, PlanStudent, PlanStudentPlus, PlanFamily:
		return p, true
	}
	return "", false
}

// Modes returns the study modes unlocked by the plan. Unknown plans get the
// free tier.
func (p Plan) Modes() []Mode {
	switch p {
	case PlanStudent:
		return []Mode{ModeQuickDoubt, ModeExamPrep}
	case PlanStudentPlus, PlanFamily:
		return AllModes
	default:
		return []Mode{ModeQuickDoubt}
	}
}

// Allows reports whether mode m is available on plan p.
func (p Plan) Allows(m Mode) bool {
	for _, allowed := range p.Modes() {
		if allowed == m {
			return true
		}
	}
	return false
}

// Profile holds the student data used to personalise the tutor. A profile
// is created lazily with minimal defaults the first time a user is seen and
// is never deleted.
//
// Required for onboarding: FullName, Age, Grade, Interests. Everything else
// is optional and omitted from the tutor prompt when blank.
type Profile struct {
	ID                  string                      `json:"id"                   gorm:"type:char(36);primaryKey"`
	UserID              string                      `json:"user_id"              gorm:"type:varchar(64);not null;uniqueIndex"`
	FullName            string                      `json:"full_name"            gorm:"type:varchar(255);not null;default:''"`
	Age                 int                         `json:"age"                  gorm:"not null;default:0"`
	Grade               string                      `json:"grade"                gorm:"type:varchar(64);not null;default:''"`
	Interests           datatypes.JSONSlice[string] `json:"interests"`
	OtherInterests      string                      `json:"other_interests,omitempty"`
	LearningPreferences datatypes.JSONSlice[string] `json:"learning_preferences"`
	Challenges          string                      `json:"challenges,omitempty"`
	StudyGoals          string                      `json:"study_goals,omitempty"`
	SchoolName          string                      `json:"school_name,omitempty"`
	Province            string                      `json:"province,omitempty"`
	City                string                      `json:"city,omitempty"`
	Plan                Plan                        `json:"plan"                 gorm:"type:varchar(32);not null;default:'free'"`
	OnboardingCompleted bool                        `json:"onboarding_completed" gorm:"not null;default:false"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// EffectivePlan returns the profile plan, treating blank as free.
func (p *Profile) EffectivePlan() Plan {
	if p == nil || p.Plan == "" {
		return PlanFree
	}
	return p.Plan
}
