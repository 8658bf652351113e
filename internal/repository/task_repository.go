package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"day-scheduler/internal/model"
)

// TaskRepository handles CRUD for template tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// List returns tasks ordered by order_index, insertion order breaking ties.
// A nil templateID lists every template.
func (r *TaskRepository) List(ctx context.Context, templateID *int) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})
	if templateID != nil {
		q = q.Where("template_id = ?", *templateID)
	}
	tasks := []model.Task{}
	if err := q.Order("order_index ASC").Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Save persists every column of an existing task and refreshes updated_at.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Delete removes a task and reports whether a row existed.
// Schedule entries pointing at it are left alone.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountByTemplate returns task counts keyed by template id.
func (r *TaskRepository) CountByTemplate(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		TemplateID int
		Count      int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("template_id, COUNT(*) AS count").
		Group("template_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.TemplateID] = row.Count
	}
	return counts, nil
}
