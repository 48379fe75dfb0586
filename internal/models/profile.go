package models

import "time"

// UserProfile holds the smoking baseline every "avoided" number is measured against.
type UserProfile struct {
	ID                     string    `json:"id" yaml:"id"`
	DisplayName            string    `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	CigarettesPerDayBefore float64   `json:"cigarettes_per_day_before" yaml:"cigarettes_per_day_before"`
	CostPerPack            float64   `json:"cost_per_pack" yaml:"cost_per_pack"`
	CigarettesPerPack      *float64  `json:"cigarettes_per_pack,omitempty" yaml:"cigarettes_per_pack,omitempty"` // nil means "use the default pack size"
	Currency               string    `json:"currency" yaml:"currency"`
	DailyLimit             *int      `json:"daily_limit" yaml:"daily_limit"`
	JourneyStartDate       time.Time `json:"journey_start_date" yaml:"journey_start_date"`
	OnboardingCompleted    bool      `json:"onboarding_completed" yaml:"onboarding_completed"`
	UpdatedAt              time.Time `json:"updated_at" yaml:"updated_at"`
}

// HasJourneyStart reports whether onboarding has anchored the journey.
func (p UserProfile) HasJourneyStart() bool {
	return !p.JourneyStartDate.IsZero()
}
