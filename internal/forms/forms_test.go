package forms

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
)

func TestOnboardingProfile(t *testing.T) {
	size := 25.0
	limit := 8
	tests := []struct {
		name    string
		fm      OnboardingFormModel
		want    models.UserProfile
		wantErr bool
	}{
		{
			name: "required fields only",
			fm:   OnboardingFormModel{PerDay: "20", PackCost: "10.50", Currency: "usd"},
			want: models.UserProfile{CigarettesPerDayBefore: 20, CostPerPack: 10.5, Currency: "USD"},
		},
		{
			name: "everything",
			fm:   OnboardingFormModel{Name: " sam ", PerDay: "12", PackCost: "9", PackSize: "25", Currency: "EUR", Limit: "8"},
			want: models.UserProfile{
				DisplayName:            "sam",
				CigarettesPerDayBefore: 12,
				CostPerPack:            9,
				CigarettesPerPack:      &size,
				Currency:               "EUR",
				DailyLimit:             &limit,
			},
		},
		{name: "bad per day", fm: OnboardingFormModel{PerDay: "lots", PackCost: "10"}, wantErr: true},
		{name: "bad limit", fm: OnboardingFormModel{PerDay: "10", PackCost: "10", Limit: "2.5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fm.Profile()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Profile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Profile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(string) error
		input string
		ok    bool
	}{
		{"positive", PositiveNumber, "1.5", true},
		{"positive zero", PositiveNumber, "0", false},
		{"positive junk", PositiveNumber, "abc", false},
		{"non-negative zero", NonNegativeNumber, "0", true},
		{"non-negative below", NonNegativeNumber, "-1", false},
		{"int", NonNegativeInt, " 4 ", true},
		{"int fraction", NonNegativeInt, "4.5", false},
		{"optional empty", optional(PositiveNumber), "", true},
		{"optional bad", optional(PositiveNumber), "-3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(tt.input); (err == nil) != tt.ok {
				t.Errorf("validator(%q) error = %v, want ok=%v", tt.input, err, tt.ok)
			}
		})
	}
}

func TestEntryAndCravingAnswers(t *testing.T) {
	e := (&EntryFormModel{Location: "car", Trigger: "after_meal", Notes: "  traffic  "}).Entry(models.SmokingEntry{ID: "x"})
	if e.ID != "x" || e.Location != constants.LocationCar || e.Trigger != constants.TriggerAfterMeal || e.Notes != "traffic" {
		t.Errorf("Entry() = %+v", e)
	}

	c, err := (&CravingFormModel{Intensity: "4", Trigger: "stress", Strategy: " walk ", Resisted: true}).Craving()
	if err != nil {
		t.Fatal(err)
	}
	if c.Intensity != 4 || c.Strategy != "walk" || !c.Resisted {
		t.Errorf("Craving() = %+v", c)
	}
	if _, err := (&CravingFormModel{Intensity: "x"}).Craving(); err == nil {
		t.Error("expected error for non-numeric intensity")
	}
}

func TestLabel(t *testing.T) {
	if got := label("after_meal"); got != "After meal" {
		t.Errorf("label() = %q", got)
	}
}
