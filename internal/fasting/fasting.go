package fasting

import (
	"math"
	"time"
)

const DefaultType = "16:8"

// Window is one fasting window. A null EndedAt means the fast is still in
// progress; duration is always derived, never stored.
type Window struct {
	ID          int        `json:"id"`
	UserID      int        `json:"-"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`
	FastingType string     `json:"fasting_type"`
	Notes       *string    `json:"notes,omitempty"`
}

// Duration reports the window length in hours to one decimal, measured to
// `now` while the window is still open.
func (w Window) Duration(now time.Time) float64 {
	end := now
	if w.EndedAt != nil {
		end = *w.EndedAt
	}
	hours := end.Sub(w.StartedAt).Hours()
	return math.Round(hours*10) / 10
}

func (w Window) Active() bool {
	return w.EndedAt == nil
}
