package model

import (
	"encoding/json"
	"time"
)

// Optional is a patch field. Set reports whether the key was present in the
// decoded JSON document, so an explicit null can be told apart from absence.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON is only invoked for keys that are present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = v
	o.Set = true
	return nil
}

// DayLayout is the storage format of ScheduleEntry.Date.
const DayLayout = "2006-01-02"

// DayOf formats t as a calendar day in t's own location.
func DayOf(t time.Time) string {
	return t.Format(DayLayout)
}
