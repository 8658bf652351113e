package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"day-scheduler/internal/model"
	"day-scheduler/internal/repository"
)

func TestFormatSummary(t *testing.T) {
	now := time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)
	entries := []model.ScheduleEntry{
		{ID: 1, Name: "Gym", Duration: 60, StartTime: "07:00", Date: today, Completed: true},
		{ID: 2, Name: "Read <book>", Duration: 30, StartTime: "08:00", Date: today},
		{ID: 3, Name: "Night walk", Duration: 90, StartTime: "23:00", Date: today},
	}

	got := FormatSummary(entries, now)

	for _, want := range []string{
		"Thu, 15 Oct 2026",
		"✅ <code>07:00–08:00</code> Gym <i>#1</i>",
		"⏳ <code>08:00–08:30</code> Read &lt;book&gt; <i>#2</i>",
		"🟢 <code>23:00–00:30</code> Night walk <i>#3</i>",
		"1/3 done · 3h planned",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestFormatSummaryEmpty(t *testing.T) {
	got := FormatSummary(nil, time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	if !strings.Contains(got, "nothing planned") {
		t.Fatalf("unexpected empty summary %q", got)
	}
}

func TestDailySummaryReadsDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.schedule.CreateEntry(ctx, today, EntryInput{Name: "Lunch", Duration: 45, StartTime: "12:00"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.schedule.CreateEntry(ctx, "2026-10-16", EntryInput{Name: "Tomorrow", Duration: 45, StartTime: "12:00"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	svc := NewReminderService(repository.NewScheduleRepository(f.db))
	text, err := svc.DailySummary(ctx, time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(text, "Lunch") || strings.Contains(text, "Tomorrow") {
		t.Fatalf("summary should only include the requested day:\n%s", text)
	}
	if !strings.Contains(text, "45m planned") {
		t.Fatalf("expected planned minutes:\n%s", text)
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{0: "0m", 45: "45m", 60: "1h", 95: "1h35m"}
	for in, want := range cases {
		if got := formatMinutes(in); got != want {
			t.Errorf("formatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}
