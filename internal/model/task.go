package model

import "time"

// Task is a reusable activity that belongs to one of the day templates.
type Task struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Duration   int       `gorm:"not null" json:"duration"` // minutes
	Color      string    `gorm:"size:7;not null" json:"color"`
	StartTime  *string   `gorm:"size:5" json:"start_time"` // HH:MM, nil when unscheduled
	OrderIndex int       `gorm:"not null" json:"order_index"`
	TemplateID int       `gorm:"index;not null" json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Template is a numbered group of tasks. Templates are not persisted; the set is fixed.
type Template struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	TaskCount int64  `json:"task_count"`
}
