// Package sqlbase holds the CRUD queries shared by the SQLite and PostgreSQL
// stores. Queries are written with ? placeholders and rebound per dialect.
package sqlbase

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
)

// Queries runs the shared statements against DB.
type Queries struct {
	DB     *sql.DB
	Dollar bool // use $1, $2 ... placeholders
}

func (q *Queries) rebind(query string) string {
	if !q.Dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (q *Queries) exec(query string, args ...interface{}) (sql.Result, error) {
	if q.DB == nil {
		return nil, storage.ErrNotInitialized
	}
	return q.DB.Exec(q.rebind(query), args...)
}

func (q *Queries) query(query string, args ...interface{}) (*sql.Rows, error) {
	if q.DB == nil {
		return nil, storage.ErrNotInitialized
	}
	return q.DB.Query(q.rebind(query), args...)
}

// queryRow callers check DB themselves.
func (q *Queries) queryRow(query string, args ...interface{}) *sql.Row {
	return q.DB.QueryRow(q.rebind(query), args...)
}

func toNS(t time.Time) int64 { return t.UnixNano() }

func fromNS(ns int64) time.Time { return time.Unix(0, ns).UTC() }

func nullNS(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNS(n.Int64)
	return &t
}

// listClause builds the WHERE/ORDER/LIMIT tail for timestamped streams.
func listClause(column string, opts models.ListOptions) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if opts.Since != nil {
		where = append(where, column+" >= ?")
		args = append(args, toNS(*opts.Since))
	}
	if opts.Until != nil {
		where = append(where, column+" <= ?")
		args = append(args, toNS(*opts.Until))
	}

	var b strings.Builder
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(column)
	if opts.Sort == models.SortDesc {
		b.WriteString(" DESC")
	} else {
		b.WriteString(" ASC")
	}
	b.WriteString(", id ASC")
	if opts.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}
	return b.String(), args
}

func deleted(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Profile

const profileColumns = `id, display_name, cigarettes_per_day_before, cost_per_pack, cigarettes_per_pack,
	currency, daily_limit, journey_start_ns, onboarding_completed, updated_at_ns`

func (q *Queries) GetProfile() (models.UserProfile, error) {
	if q.DB == nil {
		return models.UserProfile{}, storage.ErrNotInitialized
	}
	var (
		p            models.UserProfile
		perPack      sql.NullFloat64
		dailyLimit   sql.NullInt64
		journeyStart sql.NullInt64
		updatedAt    int64
	)
	err := q.queryRow("SELECT "+profileColumns+" FROM profile LIMIT 1").Scan(
		&p.ID, &p.DisplayName, &p.CigarettesPerDayBefore, &p.CostPerPack, &perPack,
		&p.Currency, &dailyLimit, &journeyStart, &p.OnboardingCompleted, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, storage.ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	if perPack.Valid {
		v := perPack.Float64
		p.CigarettesPerPack = &v
	}
	if dailyLimit.Valid {
		v := int(dailyLimit.Int64)
		p.DailyLimit = &v
	}
	if journeyStart.Valid {
		p.JourneyStartDate = fromNS(journeyStart.Int64)
	}
	p.UpdatedAt = fromNS(updatedAt)
	return p, nil
}

// SaveProfile keeps a single profile row; saving replaces it.
func (q *Queries) SaveProfile(p models.UserProfile) error {
	if q.DB == nil {
		return storage.ErrNotInitialized
	}
	if p.ID == "" {
		p.ID = storage.NewID()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	var perPack sql.NullFloat64
	if p.CigarettesPerPack != nil {
		perPack = sql.NullFloat64{Float64: *p.CigarettesPerPack, Valid: true}
	}
	var dailyLimit sql.NullInt64
	if p.DailyLimit != nil {
		dailyLimit = sql.NullInt64{Int64: int64(*p.DailyLimit), Valid: true}
	}
	var journeyStart sql.NullInt64
	if !p.JourneyStartDate.IsZero() {
		journeyStart = sql.NullInt64{Int64: toNS(p.JourneyStartDate), Valid: true}
	}

	tx, err := q.DB.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM profile"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to save profile: %w", err)
	}
	_, err = tx.Exec(q.rebind("INSERT INTO profile ("+profileColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		p.ID, p.DisplayName, p.CigarettesPerDayBefore, p.CostPerPack, perPack,
		p.Currency, dailyLimit, journeyStart, p.OnboardingCompleted, toNS(time.Now()),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return tx.Commit()
}

// Smoking entries

const entryColumns = "id, timestamp_ns, location, trigger_name, quick_log, notes, created_at_ns, updated_at_ns"

func scanEntry(sc interface{ Scan(...interface{}) error }) (models.SmokingEntry, error) {
	var (
		e                       models.SmokingEntry
		ts, created, updated    int64
		location, trigger, note string
	)
	if err := sc.Scan(&e.ID, &ts, &location, &trigger, &e.QuickLog, &note, &created, &updated); err != nil {
		return models.SmokingEntry{}, err
	}
	e.Timestamp = fromNS(ts)
	e.Location = constants.Location(location)
	e.Trigger = constants.Trigger(trigger)
	e.Notes = note
	e.CreatedAt = fromNS(created)
	e.UpdatedAt = fromNS(updated)
	return e, nil
}

func (q *Queries) AddEntry(e models.SmokingEntry) (models.SmokingEntry, error) {
	if e.ID == "" {
		e.ID = storage.NewID()
	}
	storage.Stamp(&e.CreatedAt, &e.UpdatedAt, time.Now())
	_, err := q.exec("INSERT INTO smoking_entries ("+entryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, toNS(e.Timestamp), string(e.Location), string(e.Trigger), e.QuickLog, e.Notes,
		toNS(e.CreatedAt), toNS(e.UpdatedAt))
	if err != nil {
		return models.SmokingEntry{}, fmt.Errorf("failed to add entry: %w", err)
	}
	return e, nil
}

func (q *Queries) GetEntry(id string) (models.SmokingEntry, error) {
	if q.DB == nil {
		return models.SmokingEntry{}, storage.ErrNotInitialized
	}
	e, err := scanEntry(q.queryRow("SELECT "+entryColumns+" FROM smoking_entries WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SmokingEntry{}, fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
	}
	return e, err
}

func (q *Queries) ListEntries(opts models.ListOptions) ([]models.SmokingEntry, error) {
	tail, args := listClause("timestamp_ns", opts)
	rows, err := q.query("SELECT "+entryColumns+" FROM smoking_entries"+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var out []models.SmokingEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateEntry(e models.SmokingEntry) (models.SmokingEntry, error) {
	old, err := q.GetEntry(e.ID)
	if err != nil {
		return models.SmokingEntry{}, err
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = time.Now()
	_, err = q.exec(`UPDATE smoking_entries SET timestamp_ns = ?, location = ?, trigger_name = ?,
		quick_log = ?, notes = ?, updated_at_ns = ? WHERE id = ?`,
		toNS(e.Timestamp), string(e.Location), string(e.Trigger), e.QuickLog, e.Notes, toNS(e.UpdatedAt), e.ID)
	if err != nil {
		return models.SmokingEntry{}, fmt.Errorf("failed to update entry: %w", err)
	}
	return e, nil
}

func (q *Queries) DeleteEntry(id string) (bool, error) {
	return deleted(q.exec("DELETE FROM smoking_entries WHERE id = ?", id))
}

// Cravings

const cravingColumns = "id, timestamp_ns, intensity, trigger_name, strategy, resisted, notes, created_at_ns, updated_at_ns"

func (q *Queries) AddCraving(c models.CravingEntry) (models.CravingEntry, error) {
	if c.ID == "" {
		c.ID = storage.NewID()
	}
	storage.Stamp(&c.CreatedAt, &c.UpdatedAt, time.Now())
	_, err := q.exec("INSERT INTO craving_entries ("+cravingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, toNS(c.Timestamp), c.Intensity, string(c.Trigger), c.Strategy, c.Resisted, c.Notes,
		toNS(c.CreatedAt), toNS(c.UpdatedAt))
	if err != nil {
		return models.CravingEntry{}, fmt.Errorf("failed to add craving: %w", err)
	}
	return c, nil
}

func (q *Queries) ListCravings(opts models.ListOptions) ([]models.CravingEntry, error) {
	tail, args := listClause("timestamp_ns", opts)
	rows, err := q.query("SELECT "+cravingColumns+" FROM craving_entries"+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cravings: %w", err)
	}
	defer rows.Close()

	var out []models.CravingEntry
	for rows.Next() {
		var (
			c                    models.CravingEntry
			ts, created, updated int64
			trigger              string
		)
		if err := rows.Scan(&c.ID, &ts, &c.Intensity, &trigger, &c.Strategy, &c.Resisted, &c.Notes, &created, &updated); err != nil {
			return nil, err
		}
		c.Timestamp = fromNS(ts)
		c.Trigger = constants.Trigger(trigger)
		c.CreatedAt = fromNS(created)
		c.UpdatedAt = fromNS(updated)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteCraving(id string) (bool, error) {
	return deleted(q.exec("DELETE FROM craving_entries WHERE id = ?", id))
}

// Achievements

const achievementColumns = `id, template_id, title, description, category, badge_icon, badge_color,
	target_value, progress_key, current_progress, is_completed, completed_date_ns, created_at_ns, updated_at_ns`

func scanAchievement(sc interface{ Scan(...interface{}) error }) (models.AchievementRecord, error) {
	var (
		r                models.AchievementRecord
		completed        sql.NullInt64
		created, updated int64
	)
	err := sc.Scan(&r.ID, &r.TemplateID, &r.Title, &r.Description, &r.Category, &r.BadgeIcon, &r.BadgeColor,
		&r.TargetValue, &r.ProgressKey, &r.CurrentProgress, &r.IsCompleted, &completed, &created, &updated)
	if err != nil {
		return models.AchievementRecord{}, err
	}
	r.CompletedDate = timePtr(completed)
	r.CreatedAt = fromNS(created)
	r.UpdatedAt = fromNS(updated)
	return r, nil
}

func (q *Queries) AddAchievement(r models.AchievementRecord) (models.AchievementRecord, error) {
	if r.ID == "" {
		r.ID = storage.NewID()
	}
	storage.Stamp(&r.CreatedAt, &r.UpdatedAt, time.Now())
	_, err := q.exec("INSERT INTO achievements ("+achievementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.TemplateID, r.Title, r.Description, r.Category, r.BadgeIcon, r.BadgeColor,
		r.TargetValue, r.ProgressKey, r.CurrentProgress, r.IsCompleted, nullNS(r.CompletedDate),
		toNS(r.CreatedAt), toNS(r.UpdatedAt))
	if err != nil {
		return models.AchievementRecord{}, fmt.Errorf("failed to add achievement: %w", err)
	}
	return r, nil
}

func (q *Queries) getAchievement(id string) (models.AchievementRecord, error) {
	r, err := scanAchievement(q.queryRow("SELECT "+achievementColumns+" FROM achievements WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.AchievementRecord{}, fmt.Errorf("achievement %s: %w", id, storage.ErrNotFound)
	}
	return r, err
}

func (q *Queries) ListAchievements() ([]models.AchievementRecord, error) {
	rows, err := q.query("SELECT " + achievementColumns + " FROM achievements ORDER BY created_at_ns ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var out []models.AchievementRecord
	for rows.Next() {
		r, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateAchievement(id string, u models.AchievementUpdate) (models.AchievementRecord, error) {
	if q.DB == nil {
		return models.AchievementRecord{}, storage.ErrNotInitialized
	}
	r, err := q.getAchievement(id)
	if err != nil {
		return models.AchievementRecord{}, err
	}
	r = u.Apply(r, time.Now())
	_, err = q.exec(`UPDATE achievements SET template_id = ?, current_progress = ?, is_completed = ?,
		completed_date_ns = ?, updated_at_ns = ? WHERE id = ?`,
		r.TemplateID, r.CurrentProgress, r.IsCompleted, nullNS(r.CompletedDate), toNS(r.UpdatedAt), id)
	if err != nil {
		return models.AchievementRecord{}, fmt.Errorf("failed to update achievement: %w", err)
	}
	return r, nil
}

func (q *Queries) DeleteAchievement(id string) (bool, error) {
	return deleted(q.exec("DELETE FROM achievements WHERE id = ?", id))
}

// Goal history

func (q *Queries) AddGoal(g models.GoalHistoryRecord) (models.GoalHistoryRecord, error) {
	if g.ID == "" {
		g.ID = storage.NewID()
	}
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.Date.IsZero() {
		g.Date = now
	}
	_, err := q.exec("INSERT INTO goal_history (id, date_ns, daily_limit, created_at_ns) VALUES (?, ?, ?, ?)",
		g.ID, toNS(g.Date), g.Limit, toNS(g.CreatedAt))
	if err != nil {
		return models.GoalHistoryRecord{}, fmt.Errorf("failed to add goal: %w", err)
	}
	return g, nil
}

func (q *Queries) ListGoals() ([]models.GoalHistoryRecord, error) {
	rows, err := q.query("SELECT id, date_ns, daily_limit, created_at_ns FROM goal_history ORDER BY date_ns ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var out []models.GoalHistoryRecord
	for rows.Next() {
		var (
			g             models.GoalHistoryRecord
			date, created int64
		)
		if err := rows.Scan(&g.ID, &date, &g.Limit, &created); err != nil {
			return nil, err
		}
		g.Date = fromNS(date)
		g.CreatedAt = fromNS(created)
		out = append(out, g)
	}
	return out, rows.Err()
}

// State

func (q *Queries) GetState(key string) (string, error) {
	if q.DB == nil {
		return "", storage.ErrNotInitialized
	}
	var v string
	err := q.queryRow("SELECT value FROM app_state WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	return v, err
}

func (q *Queries) SetState(key, value string) error {
	_, err := q.exec(`INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Reset clears every stream and the state area in one transaction and
// strips the profile back to its identity.
func (q *Queries) Reset() error {
	if q.DB == nil {
		return storage.ErrNotInitialized
	}
	profile, profileErr := q.GetProfile()

	tx, err := q.DB.Begin()
	if err != nil {
		return err
	}
	for _, table := range []string{"smoking_entries", "craving_entries", "achievements", "goal_history", "app_state"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if profileErr == nil {
		return q.SaveProfile(storage.ClearBaseline(profile))
	}
	return nil
}
