package storage

import "github.com/julianstephens/quitlog/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Profile
	GetProfile() (models.UserProfile, error)
	SaveProfile(models.UserProfile) error

	// Smoking entries
	AddEntry(models.SmokingEntry) (models.SmokingEntry, error)
	GetEntry(id string) (models.SmokingEntry, error)
	ListEntries(models.ListOptions) ([]models.SmokingEntry, error)
	// UpdateEntry replaces the stored entry with the same ID. It returns
	// ErrNotFound when no such entry exists.
	UpdateEntry(models.SmokingEntry) (models.SmokingEntry, error)
	DeleteEntry(id string) (bool, error)

	// Cravings
	AddCraving(models.CravingEntry) (models.CravingEntry, error)
	ListCravings(models.ListOptions) ([]models.CravingEntry, error)
	DeleteCraving(id string) (bool, error)

	// Achievements
	AddAchievement(models.AchievementRecord) (models.AchievementRecord, error)
	ListAchievements() ([]models.AchievementRecord, error)
	UpdateAchievement(id string, u models.AchievementUpdate) (models.AchievementRecord, error)
	DeleteAchievement(id string) (bool, error)

	// Goal history
	AddGoal(models.GoalHistoryRecord) (models.GoalHistoryRecord, error)
	ListGoals() ([]models.GoalHistoryRecord, error)

	// Key/value state (shown notifications, support counters)
	GetState(key string) (string, error)
	SetState(key, value string) error

	// Reset deletes every stream, the state area and the profile baseline.
	Reset() error

	// Utils
	GetConfigPath() string
}
