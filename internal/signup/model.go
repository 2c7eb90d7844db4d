// Package signup accepts waitlist joins and beta applications and sends the
// matching tracked email for each.
package signup

import (
	"time"

	"github.com/google/uuid"
)

// ExperienceLevel is a beta applicant's self-reported skill.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

var ExperienceLevels = []ExperienceLevel{
	ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced, ExperienceExpert,
}

// Activities accepted in interests and activities lists.
var Activities = []string{
	"hiking", "backpacking", "climbing", "mountaineering", "skiing",
	"snowboarding", "kayaking", "rafting", "surfing", "mountain-biking",
	"fishing", "camping",
}

// WaitlistEntry is one waitlist signup.
type WaitlistEntry struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Location  string    `json:"location,omitempty"`
	Interests []string  `json:"interests,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BetaApplication is one beta program application. DepositAmount is what
// the applicant pledged; no payment is taken here.
type BetaApplication struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Phone           string          `json:"phone,omitempty"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Activities      []string        `json:"activities"`
	DepositAmount   float64         `json:"deposit_amount,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
