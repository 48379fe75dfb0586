package constants

// Location is where a cigarette was smoked
type Location string

// Trigger is what prompted a cigarette or craving
type Trigger string

// LimitStatus describes today's count relative to the daily limit
type LimitStatus string

const (
	LocationHome    Location = "home"
	LocationWork    Location = "work"
	LocationCar     Location = "car"
	LocationOutside Location = "outside"
	LocationSocial  Location = "social"
	LocationOther   Location = "other"

	TriggerStress    Trigger = "stress"
	TriggerBoredom   Trigger = "boredom"
	TriggerHabit     Trigger = "habit"
	TriggerSocial    Trigger = "social"
	TriggerCraving   Trigger = "craving"
	TriggerAfterMeal Trigger = "after_meal"
	TriggerBreak     Trigger = "break"
	TriggerOther     Trigger = "other"

	LimitNone  LimitStatus = "none"
	LimitUnder LimitStatus = "under"
	LimitNear  LimitStatus = "near"
	LimitOver  LimitStatus = "over"
)

// Locations lists the known locations in display order.
var Locations = []Location{
	LocationHome, LocationWork, LocationCar, LocationOutside, LocationSocial, LocationOther,
}

// Triggers lists the known triggers in display order.
var Triggers = []Trigger{
	TriggerStress, TriggerBoredom, TriggerHabit, TriggerSocial,
	TriggerCraving, TriggerAfterMeal, TriggerBreak, TriggerOther,
}

// CurrencySymbols maps ISO currency codes to display symbols.
var CurrencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "$",
	"AUD": "$",
}

// Currencies lists the supported currency codes in display order.
var Currencies = []string{"USD", "EUR", "GBP", "CAD", "AUD"}

// IsKnownLocation reports whether l is empty or one of Locations.
func IsKnownLocation(l Location) bool {
	if l == "" {
		return true
	}
	for _, known := range Locations {
		if known == l {
			return true
		}
	}
	return false
}

// IsKnownTrigger reports whether t is empty or one of Triggers.
func IsKnownTrigger(t Trigger) bool {
	if t == "" {
		return true
	}
	for _, known := range Triggers {
		if known == t {
			return true
		}
	}
	return false
}

// CurrencySymbol returns the display symbol for code, defaulting to "$".
func CurrencySymbol(code string) string {
	if s, ok := CurrencySymbols[code]; ok {
		return s
	}
	return "$"
}
