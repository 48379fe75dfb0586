// Package support tracks when to ask the user for a tip.
package support

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/storage"
)

// Counters is the persisted prompt state.
type Counters struct {
	InteractionCount int        `json:"interactionCount"`
	NeverAsk         bool       `json:"neverAsk"`
	LaterCount       int        `json:"laterCount"`
	LastShown        *time.Time `json:"lastShown"`
}

// StateStore is the key/value area the counters live in.
type StateStore interface {
	GetState(key string) (string, error)
	SetState(key, value string) error
}

type Prompter struct {
	store StateStore
	clock func() time.Time
}

func NewPrompter(store StateStore, clock func() time.Time) *Prompter {
	if clock == nil {
		clock = time.Now
	}
	return &Prompter{store: store, clock: clock}
}

// Load reads the counters. Each field is decoded on its own so one bad
// field only resets that field.
func (p *Prompter) Load() Counters {
	var c Counters
	raw, err := p.store.GetState(constants.StateSupportData)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("Failed to read support counters", "error", err)
		}
		return c
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		logger.Warn("Support counters are corrupt, using defaults", "error", err)
		return c
	}

	decode := func(name string, dst interface{}) bool {
		v, ok := fields[name]
		if !ok {
			return false
		}
		if err := json.Unmarshal(v, dst); err != nil {
			logger.Warn("Ignoring malformed support field", "field", name, "error", err)
			return false
		}
		return true
	}
	var count, later int
	var never bool
	var shown time.Time
	if decode("interactionCount", &count) {
		c.InteractionCount = max(count, 0)
	}
	if decode("neverAsk", &never) {
		c.NeverAsk = never
	}
	if decode("laterCount", &later) {
		c.LaterCount = max(later, 0)
	}
	if decode("lastShown", &shown) && !shown.IsZero() {
		c.LastShown = &shown
	}
	return c
}

func (p *Prompter) save(c Counters) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode support counters: %w", err)
	}
	if err := p.store.SetState(constants.StateSupportData, string(data)); err != nil {
		return fmt.Errorf("failed to save support counters: %w", err)
	}
	return nil
}

// ShouldPrompt reports whether c has crossed the prompt threshold.
func ShouldPrompt(c Counters) bool {
	if c.NeverAsk || c.InteractionCount < constants.SupportInteractionThreshold {
		return false
	}
	return c.LaterCount == 0 || c.InteractionCount >= c.LaterCount+constants.SupportLaterThreshold
}

// Track counts one interaction and reports whether to prompt now.
func (p *Prompter) Track() (bool, error) {
	c := p.Load()
	if c.NeverAsk {
		return false, nil
	}
	c.InteractionCount++
	if err := p.save(c); err != nil {
		return false, err
	}
	return ShouldPrompt(c), nil
}

// Later postpones the prompt for another round of interactions.
func (p *Prompter) Later() error {
	c := p.Load()
	c.LaterCount = c.InteractionCount
	now := p.clock()
	c.LastShown = &now
	return p.save(c)
}

// NeverAsk silences the prompt for good.
func (p *Prompter) NeverAsk() error {
	c := p.Load()
	c.NeverAsk = true
	now := p.clock()
	c.LastShown = &now
	return p.save(c)
}
