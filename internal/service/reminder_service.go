package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"day-scheduler/internal/model"
	"day-scheduler/internal/repository"
)

// ReminderService builds human-readable summaries of a day's schedule for notifications.
type ReminderService struct {
	scheduleRepo *repository.ScheduleRepository
}

func NewReminderService(scheduleRepo *repository.ScheduleRepository) *ReminderService {
	return &ReminderService{scheduleRepo: scheduleRepo}
}

// DailySummary renders the schedule of now's day as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	entries, err := s.scheduleRepo.ListByDate(ctx, model.DayOf(now))
	if err != nil {
		return "", err
	}
	return FormatSummary(entries, now), nil
}

// FormatSummary renders entries (already ordered by start time) relative to now.
func FormatSummary(entries []model.ScheduleEntry, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("📋 <b>Today's schedule</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Mon, 02 Jan 2006")))

	if len(entries) == 0 {
		builder.WriteString("— nothing planned. Use /sync to load a template.\n")
		return strings.TrimSpace(builder.String())
	}

	done, planned := 0, 0
	for _, entry := range entries {
		builder.WriteString(formatEntry(entry, now))
		planned += entry.Duration
		if entry.Completed {
			done++
		}
	}

	builder.WriteString(fmt.Sprintf("\n✅ %d/%d done · %s planned", done, len(entries), formatMinutes(planned)))
	return strings.TrimSpace(builder.String())
}

func formatEntry(entry model.ScheduleEntry, now time.Time) string {
	icon := "🟢"
	switch {
	case entry.Completed:
		icon = "✅"
	case entryStarted(entry, now):
		icon = "⏳"
	}

	end := addMinutes(entry.StartTime, entry.Duration)
	return fmt.Sprintf("%s <code>%s–%s</code> %s <i>#%d</i>\n",
		icon, entry.StartTime, end, html.EscapeString(strings.TrimSpace(entry.Name)), entry.ID)
}

// entryStarted reports whether an open entry's start time has passed on its day.
func entryStarted(entry model.ScheduleEntry, now time.Time) bool {
	if entry.Date != model.DayOf(now) {
		return false
	}
	return entry.StartTime <= now.Format("15:04")
}

// addMinutes returns HH:MM shifted by minutes, wrapping past midnight.
func addMinutes(clock string, minutes int) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04")
}

func formatMinutes(total int) string {
	h, m := total/60, total%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, m)
	}
}
