package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"day-scheduler/internal/logger"
	"day-scheduler/internal/metrics"
	"day-scheduler/internal/model"
	"day-scheduler/internal/repository"
)

// EntryInput represents data required to create a schedule entry.
type EntryInput struct {
	TaskID    *uint  `json:"task_id"`
	Name      string `json:"name" binding:"required,max=100"`
	Duration  int    `json:"duration" binding:"required,gt=0"`
	StartTime string `json:"start_time" binding:"required,clock"`
	Color     string `json:"color" binding:"omitempty,len=7,hexcolor"`
}

// EntryPatch lists the entry fields an update may touch.
type EntryPatch struct {
	Name      model.Optional[string] `json:"name"`
	Duration  model.Optional[int]    `json:"duration"`
	StartTime model.Optional[string] `json:"start_time"`
	Color     model.Optional[string] `json:"color"`
	TaskID    model.Optional[*uint]  `json:"task_id"`
	Completed model.Optional[bool]   `json:"completed"`
}

// ScheduleService manages the dated schedule and its sync from templates.
// Every day-scoped call takes the day explicitly (YYYY-MM-DD).
type ScheduleService struct {
	scheduleRepo *repository.ScheduleRepository
	taskRepo     *repository.TaskRepository
}

func NewScheduleService(scheduleRepo *repository.ScheduleRepository, taskRepo *repository.TaskRepository) *ScheduleService {
	return &ScheduleService{scheduleRepo: scheduleRepo, taskRepo: taskRepo}
}

func (s *ScheduleService) ListEntries(ctx context.Context, day string) ([]model.ScheduleEntry, error) {
	return s.scheduleRepo.ListByDate(ctx, day)
}

func (s *ScheduleService) CreateEntry(ctx context.Context, day string, input EntryInput) (*model.ScheduleEntry, error) {
	if err := checkStruct(input); err != nil {
		return nil, err
	}
	name, err := checkName(input.Name)
	if err != nil {
		return nil, err
	}
	startTime := strings.TrimSpace(input.StartTime)
	if err := checkVar("start_time", startTime, clockRules); err != nil {
		return nil, err
	}

	color := input.Color
	if color == "" {
		color = randomColor()
	}

	entry := model.ScheduleEntry{
		TaskID:    input.TaskID,
		Name:      name,
		Duration:  input.Duration,
		StartTime: startTime,
		Color:     color,
		Date:      day,
	}
	if err := s.scheduleRepo.Create(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry applies the set fields of patch. Nothing is written when any field is invalid.
func (s *ScheduleService) UpdateEntry(ctx context.Context, id uint, patch EntryPatch) (*model.ScheduleEntry, error) {
	entry, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if patch.Name.Set {
		name, err := checkName(patch.Name.Value)
		if err != nil {
			return nil, err
		}
		entry.Name = name
	}
	if patch.Duration.Set {
		if err := checkVar("duration", patch.Duration.Value, durationRules); err != nil {
			return nil, err
		}
		entry.Duration = patch.Duration.Value
	}
	if patch.StartTime.Set {
		startTime := strings.TrimSpace(patch.StartTime.Value)
		if err := checkVar("start_time", startTime, clockRules); err != nil {
			return nil, err
		}
		entry.StartTime = startTime
	}
	if patch.Color.Set {
		if err := checkVar("color", patch.Color.Value, colorRules); err != nil {
			return nil, err
		}
		entry.Color = patch.Color.Value
	}
	if patch.TaskID.Set {
		entry.TaskID = patch.TaskID.Value
	}
	if patch.Completed.Set {
		entry.Completed = patch.Completed.Value
	}

	if err := s.scheduleRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ScheduleService) DeleteEntry(ctx context.Context, id uint) error {
	deleted, err := s.scheduleRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("schedule entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetCompleted flips the completion flag of one entry.
func (s *ScheduleService) SetCompleted(ctx context.Context, id uint, completed bool) (*model.ScheduleEntry, error) {
	return s.UpdateEntry(ctx, id, EntryPatch{Completed: model.Some(completed)})
}

// Sync replaces every entry of day with fresh copies of the template's tasks.
//
// The delete and the inserts share one transaction: a failure leaves the
// previous schedule in place, and readers never see the day half rebuilt.
// Manual edits to the day are discarded.
func (s *ScheduleService) Sync(ctx context.Context, day string, templateID int) ([]model.ScheduleEntry, error) {
	if err := CheckTemplateID(templateID); err != nil {
		return nil, err
	}

	var entries []model.ScheduleEntry
	err := s.scheduleRepo.Transaction(ctx, func(tx *gorm.DB) error {
		schedule := s.scheduleRepo.WithTx(tx)

		if _, err := schedule.DeleteByDate(ctx, day); err != nil {
			return err
		}

		tasks, err := s.taskRepo.WithTx(tx).List(ctx, &templateID)
		if err != nil {
			return err
		}

		batch := make([]model.ScheduleEntry, 0, len(tasks))
		for _, task := range tasks {
			taskID := task.ID
			startTime := DefaultStartTime
			if task.StartTime != nil && *task.StartTime != "" {
				startTime = *task.StartTime
			}
			batch = append(batch, model.ScheduleEntry{
				TaskID:    &taskID,
				Name:      task.Name,
				Duration:  task.Duration,
				StartTime: startTime,
				Color:     task.Color,
				Date:      day,
				Completed: false,
			})
		}
		if err := schedule.CreateBatch(ctx, batch); err != nil {
			return err
		}

		entries, err = schedule.ListByDate(ctx, day)
		return err
	})
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("sync template %d into %s: %w", templateID, day, err)
	}

	metrics.SyncRuns.WithLabelValues("ok").Inc()
	logger.WithContext(ctx).Info("schedule synced", "day", day, "template_id", templateID, "entries", len(entries))
	return entries, nil
}
