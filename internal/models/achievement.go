package models

import "time"

// AchievementRecord is the persisted state of one achievement template.
// IsCompleted never reverts to false and CompletedDate is written once.
type AchievementRecord struct {
	ID              string     `json:"id" yaml:"id"`
	TemplateID      string     `json:"template_id" yaml:"template_id"`
	Title           string     `json:"title" yaml:"title"`
	Description     string     `json:"description" yaml:"description"`
	Category        string     `json:"category" yaml:"category"`
	BadgeIcon       string     `json:"badge_icon" yaml:"badge_icon"`
	BadgeColor      string     `json:"badge_color" yaml:"badge_color"`
	TargetValue     float64    `json:"target_value" yaml:"target_value"`
	ProgressKey     string     `json:"progress_key" yaml:"progress_key"`
	CurrentProgress float64    `json:"current_progress" yaml:"current_progress"`
	IsCompleted     bool       `json:"is_completed" yaml:"is_completed"`
	CompletedDate   *time.Time `json:"completed_date" yaml:"completed_date"`
	CreatedAt       time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" yaml:"updated_at"`
}

// AchievementUpdate is the patch applied by reconciliation. An empty
// TemplateID leaves the stored one untouched.
type AchievementUpdate struct {
	TemplateID      string     `json:"template_id,omitempty"`
	CurrentProgress float64    `json:"current_progress"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedDate   *time.Time `json:"completed_date"`
}

// Apply merges the patch into r.
func (u AchievementUpdate) Apply(r AchievementRecord, now time.Time) AchievementRecord {
	if u.TemplateID != "" {
		r.TemplateID = u.TemplateID
	}
	r.CurrentProgress = u.CurrentProgress
	r.IsCompleted = u.IsCompleted
	r.CompletedDate = u.CompletedDate
	r.UpdatedAt = now
	return r
}
