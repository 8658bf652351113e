package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"day-scheduler/internal/model"
	"day-scheduler/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Name       string  `json:"name" binding:"required,max=100"`
	Duration   int     `json:"duration" binding:"required,gt=0"`
	Color      string  `json:"color" binding:"omitempty,len=7,hexcolor"`
	StartTime  *string `json:"start_time" binding:"omitempty,clock"`
	OrderIndex int     `json:"order_index"`
	TemplateID *int    `json:"template_id" binding:"omitempty,min=1,max=8"`
}

// TaskPatch lists the task fields an update may touch. Unset fields keep their value.
type TaskPatch struct {
	Name       model.Optional[string]  `json:"name"`
	Duration   model.Optional[int]     `json:"duration"`
	Color      model.Optional[string]  `json:"color"`
	StartTime  model.Optional[*string] `json:"start_time"`
	OrderIndex model.Optional[int]     `json:"order_index"`
	TemplateID model.Optional[int]     `json:"template_id"`
}

// TaskService wraps template task logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// ListTasks returns the tasks of one template, or of all templates when templateID is nil.
func (s *TaskService) ListTasks(ctx context.Context, templateID *int) ([]model.Task, error) {
	return s.taskRepo.List(ctx, templateID)
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	if err := checkStruct(input); err != nil {
		return nil, err
	}
	name, err := checkName(input.Name)
	if err != nil {
		return nil, err
	}

	color := input.Color
	if color == "" {
		color = randomColor()
	}

	startTime, err := normalizeStartTime(input.StartTime)
	if err != nil {
		return nil, err
	}

	templateID := MinTemplateID
	if input.TemplateID != nil {
		templateID = *input.TemplateID
	}

	task := model.Task{
		Name:       name,
		Duration:   input.Duration,
		Color:      color,
		StartTime:  startTime,
		OrderIndex: input.OrderIndex,
		TemplateID: templateID,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies the set fields of patch. Nothing is written when any field is invalid.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, patch TaskPatch) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if patch.Name.Set {
		name, err := checkName(patch.Name.Value)
		if err != nil {
			return nil, err
		}
		task.Name = name
	}
	if patch.Duration.Set {
		if err := checkVar("duration", patch.Duration.Value, durationRules); err != nil {
			return nil, err
		}
		task.Duration = patch.Duration.Value
	}
	if patch.Color.Set {
		if err := checkVar("color", patch.Color.Value, colorRules); err != nil {
			return nil, err
		}
		task.Color = patch.Color.Value
	}
	if patch.StartTime.Set {
		startTime, err := normalizeStartTime(patch.StartTime.Value)
		if err != nil {
			return nil, err
		}
		task.StartTime = startTime
	}
	if patch.OrderIndex.Set {
		task.OrderIndex = patch.OrderIndex.Value
	}
	if patch.TemplateID.Set {
		if err := CheckTemplateID(patch.TemplateID.Value); err != nil {
			return nil, err
		}
		task.TemplateID = patch.TemplateID.Value
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task. Schedule entries copied from it are kept.
func (s *TaskService) DeleteTask(ctx context.Context, id uint) error {
	deleted, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// Templates lists the fixed template set with the number of tasks in each.
func (s *TaskService) Templates(ctx context.Context) ([]model.Template, error) {
	counts, err := s.taskRepo.CountByTemplate(ctx)
	if err != nil {
		return nil, err
	}
	templates := make([]model.Template, 0, MaxTemplateID)
	for id := MinTemplateID; id <= MaxTemplateID; id++ {
		templates = append(templates, model.Template{
			ID:        id,
			Name:      fmt.Sprintf("Schedule %d", id),
			TaskCount: counts[id],
		})
	}
	return templates, nil
}

// normalizeStartTime treats nil and blank as "unscheduled".
func normalizeStartTime(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	if err := checkVar("start_time", v, clockRules); err != nil {
		return nil, err
	}
	return &v, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
