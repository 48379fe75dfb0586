// Package forms holds the huh forms shared by the CLI and the TUI.
package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
)

// EntryFormModel backs the detailed smoking-entry form.
type EntryFormModel struct {
	Location string
	Trigger  string
	Notes    string
}

// Entry copies the answers onto e.
func (fm *EntryFormModel) Entry(e models.SmokingEntry) models.SmokingEntry {
	e.Location = constants.Location(fm.Location)
	e.Trigger = constants.Trigger(fm.Trigger)
	e.Notes = strings.TrimSpace(fm.Notes)
	return e
}

func NewEntryForm(fm *EntryFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where were you?").
				Options(locationOptions()...).
				Value(&fm.Location),
			huh.NewSelect[string]().
				Title("What set it off?").
				Options(triggerOptions()...).
				Value(&fm.Trigger),
			huh.NewText().
				Title("Notes").
				CharLimit(500).
				Value(&fm.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}

// CravingFormModel backs the craving form.
type CravingFormModel struct {
	Intensity string
	Trigger   string
	Strategy  string
	Resisted  bool
	Notes     string
}

// Craving converts the answers. Intensity is validated by the form.
func (fm *CravingFormModel) Craving() (models.CravingEntry, error) {
	n, err := strconv.Atoi(strings.TrimSpace(fm.Intensity))
	if err != nil {
		return models.CravingEntry{}, fmt.Errorf("invalid intensity %q", fm.Intensity)
	}
	return models.CravingEntry{
		Intensity: n,
		Trigger:   constants.Trigger(fm.Trigger),
		Strategy:  strings.TrimSpace(fm.Strategy),
		Resisted:  fm.Resisted,
		Notes:     strings.TrimSpace(fm.Notes),
	}, nil
}

func NewCravingForm(fm *CravingFormModel) *huh.Form {
	if fm.Intensity == "" {
		fm.Intensity = "3"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How strong was it?").
				Options(
					huh.NewOption("1 - barely there", "1"),
					huh.NewOption("2 - mild", "2"),
					huh.NewOption("3 - noticeable", "3"),
					huh.NewOption("4 - strong", "4"),
					huh.NewOption("5 - overwhelming", "5"),
				).
				Value(&fm.Intensity),
			huh.NewSelect[string]().
				Title("What set it off?").
				Options(triggerOptions()...).
				Value(&fm.Trigger),
			huh.NewInput().
				Title("What did you do instead?").
				Value(&fm.Strategy),
			huh.NewConfirm().
				Title("Did you resist?").
				Value(&fm.Resisted),
		),
	).WithTheme(huh.ThemeDracula())
}

// OnboardingFormModel backs the baseline questionnaire. Numbers are kept
// as strings for the inputs.
type OnboardingFormModel struct {
	Name     string
	PerDay   string
	PackCost string
	PackSize string
	Currency string
	Limit    string
}

// Profile parses the answers into a baseline profile.
func (fm *OnboardingFormModel) Profile() (models.UserProfile, error) {
	p := models.UserProfile{
		DisplayName: strings.TrimSpace(fm.Name),
		Currency:    strings.ToUpper(strings.TrimSpace(fm.Currency)),
	}

	var err error
	if p.CigarettesPerDayBefore, err = parseNumber(fm.PerDay); err != nil {
		return p, fmt.Errorf("cigarettes per day: %w", err)
	}
	if p.CostPerPack, err = parseNumber(fm.PackCost); err != nil {
		return p, fmt.Errorf("cost per pack: %w", err)
	}
	if strings.TrimSpace(fm.PackSize) != "" {
		size, err := parseNumber(fm.PackSize)
		if err != nil {
			return p, fmt.Errorf("cigarettes per pack: %w", err)
		}
		p.CigarettesPerPack = &size
	}
	if strings.TrimSpace(fm.Limit) != "" {
		limit, err := strconv.Atoi(strings.TrimSpace(fm.Limit))
		if err != nil {
			return p, fmt.Errorf("daily limit: %w", err)
		}
		p.DailyLimit = &limit
	}
	return p, nil
}

func NewOnboardingForm(fm *OnboardingFormModel) *huh.Form {
	if fm.Currency == "" {
		fm.Currency = "USD"
	}
	currencies := make([]huh.Option[string], 0, len(constants.CurrencySymbols))
	for _, code := range constants.Currencies {
		currencies = append(currencies, huh.NewOption(code+" "+constants.CurrencySymbol(code), code))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What should we call you?").
				Value(&fm.Name),
			huh.NewInput().
				Title("Cigarettes per day before you started").
				Value(&fm.PerDay).
				Validate(PositiveNumber),
			huh.NewInput().
				Title("Cost per pack").
				Value(&fm.PackCost).
				Validate(NonNegativeNumber),
			huh.NewInput().
				Title("Cigarettes per pack").
				Description("Leave empty for 20").
				Value(&fm.PackSize).
				Validate(optional(PositiveNumber)),
			huh.NewSelect[string]().
				Title("Currency").
				Options(currencies...).
				Value(&fm.Currency),
			huh.NewInput().
				Title("Daily limit").
				Description("Optional. Leave empty for no limit").
				Value(&fm.Limit).
				Validate(optional(NonNegativeInt)),
		),
	).WithTheme(huh.ThemeDracula())
}

// Confirm asks a yes/no question on the terminal.
func Confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	return ok, err
}

func PositiveNumber(s string) error {
	f, err := parseNumber(s)
	if err != nil {
		return err
	}
	if f <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func NonNegativeNumber(s string) error {
	f, err := parseNumber(s)
	if err != nil {
		return err
	}
	if f < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func NonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func optional(v func(string) error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return v(s)
	}
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

func locationOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Skip", "")}
	for _, l := range constants.Locations {
		opts = append(opts, huh.NewOption(label(string(l)), string(l)))
	}
	return opts
}

func triggerOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Skip", "")}
	for _, t := range constants.Triggers {
		opts = append(opts, huh.NewOption(label(string(t)), string(t)))
	}
	return opts
}

// label turns "after_meal" into "After meal".
func label(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
