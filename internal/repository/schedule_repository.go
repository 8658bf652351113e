package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"day-scheduler/internal/model"
)

// ScheduleRepository handles CRUD for dated schedule entries.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ScheduleRepository) WithTx(tx *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: tx}
}

// Transaction runs fn inside one database transaction. fn receives the
// transaction handle; returning an error rolls everything back.
func (r *ScheduleRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *ScheduleRepository) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}
	return nil
}

// CreateBatch inserts entries in a single statement.
func (r *ScheduleRepository) CreateBatch(ctx context.Context, entries []model.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("create schedule entries: %w", err)
	}
	return nil
}

// ListByDate returns a day's entries ordered by start_time, insertion order breaking ties.
func (r *ScheduleRepository) ListByDate(ctx context.Context, day string) ([]model.ScheduleEntry, error) {
	entries := []model.ScheduleEntry{}
	if err := r.db.WithContext(ctx).Where("date = ?", day).
		Order("start_time ASC").Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	return entries, nil
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id uint) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ScheduleRepository) Save(ctx context.Context, entry *model.ScheduleEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return fmt.Errorf("save schedule entry: %w", err)
	}
	return nil
}

// Delete removes one entry and reports whether a row existed.
func (r *ScheduleRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.ScheduleEntry{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete schedule entry: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteByDate removes every entry of a day.
func (r *ScheduleRepository) DeleteByDate(ctx context.Context, day string) (int64, error) {
	res := r.db.WithContext(ctx).Where("date = ?", day).Delete(&model.ScheduleEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear schedule: %w", res.Error)
	}
	return res.RowsAffected, nil
}
