// Package achievements keeps persisted achievement records in step with the
// award catalog.
package achievements

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/quitlog/internal/awards"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/stats"
)

// Store is the slice of the persistence layer the engine writes through.
type Store interface {
	ListAchievements() ([]models.AchievementRecord, error)
	AddAchievement(models.AchievementRecord) (models.AchievementRecord, error)
	UpdateAchievement(id string, u models.AchievementUpdate) (models.AchievementRecord, error)
}

// Result is the outcome of one reconciliation.
type Result struct {
	Records        []models.AchievementRecord
	NewlyCompleted []models.AchievementRecord
	Created        int
	Updated        int
}

// Engine reconciles the catalog against stored records.
type Engine struct {
	store     Store
	templates []awards.Template
	clock     func() time.Time
	limit     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now for completion dates.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithWriteLimit bounds the number of writes in flight.
func WithWriteLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithTemplates replaces the catalog, mainly for tests.
func WithTemplates(t []awards.Template) Option {
	return func(e *Engine) { e.templates = t }
}

// NewEngine returns an engine over the full award library.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		templates: awards.Library(),
		clock:     time.Now,
		limit:     constants.ReconcileWriteLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type write struct {
	template awards.Template
	existing *models.AchievementRecord
	create   models.AchievementRecord
	update   models.AchievementUpdate
	unlocks  bool
}

// Reconcile creates missing records and updates changed ones so they match
// s. Completion is sticky and the completion date is written once. When
// some writes fail the returned error is a *BatchError and the Result still
// reflects every write that went through.
func (e *Engine) Reconcile(s stats.Stats) (Result, error) {
	existing, err := e.store.ListAchievements()
	if err != nil {
		return Result{}, fmt.Errorf("failed to list achievements: %w", err)
	}

	now := e.clock()
	writes := e.plan(s, existing, now)

	var (
		mu       sync.Mutex
		res      Result
		failures []*WriteError
	)

	g := new(errgroup.Group)
	g.SetLimit(e.limit)
	for _, w := range writes {
		g.Go(func() error {
			rec, op, err := e.apply(w)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, &WriteError{TemplateID: w.template.ID, Op: op, Err: err})
				return nil
			}
			if op == "create" {
				res.Created++
			} else {
				res.Updated++
			}
			if w.unlocks {
				res.NewlyCompleted = append(res.NewlyCompleted, rec)
			}
			return nil
		})
	}
	_ = g.Wait() // goroutines report through failures

	order := make(map[string]int, len(e.templates))
	for i, t := range e.templates {
		order[t.ID] = i
	}
	sort.Slice(res.NewlyCompleted, func(i, j int) bool {
		return order[res.NewlyCompleted[i].TemplateID] < order[res.NewlyCompleted[j].TemplateID]
	})

	records, listErr := e.store.ListAchievements()
	if listErr != nil {
		listErr = fmt.Errorf("failed to reload achievements: %w", listErr)
	}
	res.Records = records

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return order[failures[i].TemplateID] < order[failures[j].TemplateID]
		})
		for _, f := range failures {
			logger.Error("Achievement write failed", "template", f.TemplateID, "op", f.Op, "error", f.Err)
		}
		batch := &BatchError{Failures: failures}
		if listErr != nil {
			return res, errors.Join(batch, listErr)
		}
		return res, batch
	}
	if listErr != nil {
		return res, listErr
	}

	logger.Debug("Achievements reconciled", "created", res.Created, "updated", res.Updated, "unlocked", len(res.NewlyCompleted))
	return res, nil
}

// plan decides which records to write without touching the store.
func (e *Engine) plan(s stats.Stats, existing []models.AchievementRecord, now time.Time) []write {
	byTemplate := make(map[string]*models.AchievementRecord)
	byTitle := make(map[string]*models.AchievementRecord)
	for i := range existing {
		r := &existing[i]
		if r.TemplateID != "" {
			if _, dup := byTemplate[r.TemplateID]; dup {
				logger.Warn("Duplicate achievement record", "template", r.TemplateID, "id", r.ID)
				continue
			}
			byTemplate[r.TemplateID] = r
		} else if _, dup := byTitle[r.Title]; !dup {
			byTitle[r.Title] = r
		}
	}

	var writes []write
	for _, t := range e.templates {
		progress := awards.Progress(t, s)
		unlocked := awards.CheckUnlock(t, s)

		rec, ok := byTemplate[t.ID]
		if !ok {
			rec, ok = byTitle[t.Name]
		}

		if !ok {
			w := write{template: t, unlocks: unlocked}
			w.create = models.AchievementRecord{
				TemplateID:      t.ID,
				Title:           t.Name,
				Description:     t.Description,
				Category:        string(t.Category),
				BadgeIcon:       t.BadgeIcon,
				BadgeColor:      t.BadgeColor,
				TargetValue:     t.TargetValue,
				ProgressKey:     string(t.ProgressKey),
				CurrentProgress: progress,
				IsCompleted:     unlocked,
			}
			if unlocked {
				completed := now
				w.create.CompletedDate = &completed
			}
			writes = append(writes, w)
			continue
		}

		transition := unlocked && !rec.IsCompleted
		backfill := rec.TemplateID == ""
		if progress == rec.CurrentProgress && !transition && !backfill {
			continue
		}

		u := models.AchievementUpdate{
			CurrentProgress: progress,
			IsCompleted:     unlocked || rec.IsCompleted,
			CompletedDate:   rec.CompletedDate,
		}
		if backfill {
			u.TemplateID = t.ID
		}
		if transition {
			completed := now
			u.CompletedDate = &completed
		}
		writes = append(writes, write{template: t, existing: rec, update: u, unlocks: transition})
	}
	return writes
}

func (e *Engine) apply(w write) (models.AchievementRecord, string, error) {
	if w.existing == nil {
		rec, err := e.store.AddAchievement(w.create)
		return rec, "create", err
	}
	rec, err := e.store.UpdateAchievement(w.existing.ID, w.update)
	return rec, "update", err
}
