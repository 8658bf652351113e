package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"day-scheduler/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestTaskRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))

	seed := []model.Task{
		{Name: "late", Duration: 10, Color: "#FF6B6B", OrderIndex: 2, TemplateID: 1},
		{Name: "first", Duration: 10, Color: "#FF6B6B", OrderIndex: 0, TemplateID: 1},
		{Name: "tie-a", Duration: 10, Color: "#FF6B6B", OrderIndex: 1, TemplateID: 1},
		{Name: "tie-b", Duration: 10, Color: "#FF6B6B", OrderIndex: 1, TemplateID: 1},
		{Name: "other", Duration: 10, Color: "#FF6B6B", OrderIndex: 0, TemplateID: 2, StartTime: strPtr("06:00")},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	one := 1
	tasks, err := repo.List(ctx, &one)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"first", "tie-a", "tie-b", "late"}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, name := range want {
		if tasks[i].Name != name {
			t.Errorf("tasks[%d] = %q, want %q", i, tasks[i].Name, name)
		}
	}

	all, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d tasks across templates, want 5", len(all))
	}

	counts, err := repo.CountByTemplate(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[1] != 4 || counts[2] != 1 || counts[3] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestTaskRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))

	task := model.Task{Name: "gym", Duration: 60, Color: "#4ECDC4", TemplateID: 1}
	if err := repo.Create(ctx, &task); err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := repo.Delete(ctx, task.ID)
	if err != nil || !deleted {
		t.Fatalf("first delete = %v, %v", deleted, err)
	}
	deleted, err = repo.Delete(ctx, task.ID)
	if err != nil || deleted {
		t.Fatalf("second delete = %v, %v; want false, nil", deleted, err)
	}
}

func TestScheduleRepositoryByDate(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepository(newTestDB(t))

	entries := []model.ScheduleEntry{
		{Name: "b", Duration: 5, StartTime: "10:00", Color: "#96CEB4", Date: "2026-10-15"},
		{Name: "a", Duration: 5, StartTime: "08:00", Color: "#96CEB4", Date: "2026-10-15"},
		{Name: "a2", Duration: 5, StartTime: "08:00", Color: "#96CEB4", Date: "2026-10-15"},
		{Name: "yesterday", Duration: 5, StartTime: "07:00", Color: "#96CEB4", Date: "2026-10-14"},
	}
	if err := repo.CreateBatch(ctx, entries); err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if err := repo.CreateBatch(ctx, nil); err != nil {
		t.Fatalf("empty batch should be a no-op: %v", err)
	}

	got, err := repo.ListByDate(ctx, "2026-10-15")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.Name
	}
	if strings.Join(names, ",") != "a,a2,b" {
		t.Fatalf("order = %v, want a,a2,b", names)
	}

	removed, err := repo.DeleteByDate(ctx, "2026-10-15")
	if err != nil || removed != 3 {
		t.Fatalf("DeleteByDate = %d, %v", removed, err)
	}
	left, err := repo.ListByDate(ctx, "2026-10-14")
	if err != nil || len(left) != 1 {
		t.Fatalf("other days must survive, got %d, %v", len(left), err)
	}
}
