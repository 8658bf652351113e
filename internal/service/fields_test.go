package service

import (
	"context"
	"errors"
	"testing"

	"day-scheduler/internal/model"
)

func TestValidationMessages(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"task without name", TaskInput{Duration: 10}, "name is required"},
		{"task zero duration", TaskInput{Name: "x"}, "duration is required"},
		{"task negative duration", TaskInput{Name: "x", Duration: -1}, "duration must be a positive number of minutes"},
		{"task short color", TaskInput{Name: "x", Duration: 10, Color: "#abc"}, "color must be in #RRGGBB form"},
		{"task late clock", TaskInput{Name: "x", Duration: 10, StartTime: strPtr("24:00")}, "start_time must be in HH:MM form"},
		{"task zero template", TaskInput{Name: "x", Duration: 10, TemplateID: intPtr(0)}, "template_id must be between 1 and 8"},
		{"entry without start", EntryInput{Name: "x", Duration: 10}, "start_time is required"},
		{"entry seconds in clock", EntryInput{Name: "x", Duration: 10, StartTime: "08:00:00"}, "start_time must be in HH:MM form"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStruct(tt.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Message != tt.want {
				t.Fatalf("message = %q, want %q", verr.Message, tt.want)
			}
		})
	}
}

func TestValidInputsPass(t *testing.T) {
	inputs := []any{
		TaskInput{Name: "x", Duration: 1},
		TaskInput{Name: "x", Duration: 1, Color: "#a1B2c3", StartTime: strPtr(" "), TemplateID: intPtr(8)},
		TaskInput{Name: "x", Duration: 1, StartTime: strPtr("23:59")},
		EntryInput{Name: "x", Duration: 1, StartTime: "00:00"},
	}
	for _, in := range inputs {
		if err := checkStruct(in); err != nil {
			t.Errorf("%+v: unexpected error %v", in, err)
		}
	}
}

func TestCheckTemplateID(t *testing.T) {
	for _, id := range []int{MinTemplateID, 4, MaxTemplateID} {
		if err := CheckTemplateID(id); err != nil {
			t.Errorf("%d: unexpected error %v", id, err)
		}
	}
	for _, id := range []int{-1, 0, MaxTemplateID + 1} {
		if err := CheckTemplateID(id); !IsValidation(err) {
			t.Errorf("%d: expected ValidationError, got %v", id, err)
		}
	}
}

func TestUpdateEntryTrimsClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entry, err := f.schedule.CreateEntry(ctx, today, EntryInput{Name: "walk", Duration: 20, StartTime: " 18:30 "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.StartTime != "18:30" {
		t.Fatalf("start_time = %q", entry.StartTime)
	}
	entry, err = f.schedule.UpdateEntry(ctx, entry.ID, EntryPatch{StartTime: model.Some(" 07:15")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if entry.StartTime != "07:15" {
		t.Fatalf("start_time = %q", entry.StartTime)
	}
}
