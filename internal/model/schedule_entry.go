package model

import "time"

// ScheduleEntry is a concrete occurrence of an activity on a given day.
//
// TaskID points back at the task the entry was copied from. It is a plain
// indexed column without a constraint: deleting the task leaves it dangling.
type ScheduleEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    *uint     `gorm:"index" json:"task_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Duration  int       `gorm:"not null" json:"duration"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"`
	Color     string    `gorm:"size:7;not null" json:"color"`
	Date      string    `gorm:"size:10;index;not null" json:"date"` // YYYY-MM-DD
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
