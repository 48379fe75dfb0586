package storage

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/quitlog/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotInitialized = errors.New("storage not initialized, run 'quitlog init' first")
)

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// Stamp fills created and updated when they are unset.
func Stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}

// InRange reports whether ts passes the Since/Until bounds of opts.
func InRange(ts time.Time, opts models.ListOptions) bool {
	if opts.Since != nil && ts.Before(*opts.Since) {
		return false
	}
	if opts.Until != nil && ts.After(*opts.Until) {
		return false
	}
	return true
}

// SortAndLimit orders items by the timestamp key and applies opts.Limit.
// Ascending is the default.
func SortAndLimit[T any](items []T, ts func(T) time.Time, opts models.ListOptions) []T {
	sort.SliceStable(items, func(i, j int) bool {
		if opts.Sort == models.SortDesc {
			return ts(items[i]).After(ts(items[j]))
		}
		return ts(items[i]).Before(ts(items[j]))
	})
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items
}
