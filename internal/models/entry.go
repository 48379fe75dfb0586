package models

import (
	"time"

	"github.com/julianstephens/quitlog/internal/constants"
)

// SmokingEntry is a single logged cigarette.
type SmokingEntry struct {
	ID        string             `json:"id" yaml:"id"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Location  constants.Location `json:"location,omitempty" yaml:"location,omitempty"`
	Trigger   constants.Trigger  `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	QuickLog  bool               `json:"quick_log" yaml:"quick_log"`
	Notes     string             `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt time.Time          `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" yaml:"updated_at"`
}

// CravingEntry is a craving the user rode out (or didn't).
type CravingEntry struct {
	ID        string            `json:"id" yaml:"id"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Intensity int               `json:"intensity" yaml:"intensity"` // 1-5
	Trigger   constants.Trigger `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Strategy  string            `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Resisted  bool              `json:"resisted" yaml:"resisted"`
	Notes     string            `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at"`
}

// GoalHistoryRecord is one daily-limit change. Records are append-only.
type GoalHistoryRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Date      time.Time `json:"date" yaml:"date"`
	Limit     int       `json:"limit" yaml:"limit"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SortOrder controls timestamp ordering of list results.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListOptions filters and orders timestamped streams.
type ListOptions struct {
	Sort  SortOrder
	Since *time.Time
	Until *time.Time
	Limit int
}
