package signup

import (
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/sanitizer"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/validator"
)

const (
	maxNameLen     = 100
	maxEmailLen    = 254
	maxLocationLen = 200
)

var (
	maxListItems = len(Activities)

	cleanText  = sanitizer.Text(maxNameLen)
	cleanPlace = sanitizer.Text(maxLocationLen)
	cleanToken = sanitizer.Compose(sanitizer.Trim, sanitizer.ToLower)
)

// WaitlistInput is the POST /api/waitlist body.
type WaitlistInput struct {
	Email     string   `json:"email" form:"email"`
	FirstName string   `json:"first_name" form:"first_name"`
	LastName  string   `json:"last_name" form:"last_name"`
	Location  string   `json:"location" form:"location"`
	Interests []string `json:"interests" form:"interests"`
}

func (in WaitlistInput) normalize() WaitlistInput {
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.FirstName = cleanText(in.FirstName)
	in.LastName = cleanText(in.LastName)
	in.Location = cleanPlace(in.Location)
	in.Interests = sanitizer.Tokens(in.Interests, cleanToken)
	return in
}

func (in WaitlistInput) validate() error {
	return validator.Apply(
		validator.Required("email", in.Email),
		validator.MaxLen("email", in.Email, maxEmailLen),
		validator.ValidEmail("email", in.Email),
		validator.Required("first_name", in.FirstName),
		validator.Required("last_name", in.LastName),
		validator.MaxItems("interests", in.Interests, maxListItems),
		validator.EachOneOf("interests", in.Interests, Activities),
	)
}

// BetaInput is the POST /api/beta-applications body.
type BetaInput struct {
	Email           string   `json:"email" form:"email"`
	FirstName       string   `json:"first_name" form:"first_name"`
	LastName        string   `json:"last_name" form:"last_name"`
	Phone           string   `json:"phone" form:"phone"`
	ExperienceLevel string   `json:"experience_level" form:"experience_level"`
	Activities      []string `json:"activities" form:"activities"`
	DepositAmount   float64  `json:"deposit_amount" form:"deposit_amount"`
}

func (in BetaInput) normalize() BetaInput {
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.FirstName = cleanText(in.FirstName)
	in.LastName = cleanText(in.LastName)
	in.Phone = sanitizer.NormalizePhone(in.Phone)
	in.ExperienceLevel = cleanToken(in.ExperienceLevel)
	in.Activities = sanitizer.Tokens(in.Activities, cleanToken)
	return in
}

func (in BetaInput) validate(maxDeposit float64) error {
	return validator.Apply(
		validator.Required("email", in.Email),
		validator.MaxLen("email", in.Email, maxEmailLen),
		validator.ValidEmail("email", in.Email),
		validator.Required("first_name", in.FirstName),
		validator.Required("last_name", in.LastName),
		validator.When(in.Phone != "", validator.ValidPhone("phone", in.Phone)),
		validator.Required("experience_level", in.ExperienceLevel),
		validator.OneOf("experience_level", ExperienceLevel(in.ExperienceLevel), ExperienceLevels),
		validator.MinItems("activities", in.Activities, 1),
		validator.MaxItems("activities", in.Activities, maxListItems),
		validator.EachOneOf("activities", in.Activities, Activities),
		validator.Range("deposit_amount", in.DepositAmount, 0, maxDeposit),
	)
}
