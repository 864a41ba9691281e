package weight

import "time"

// Log is a single weight measurement for a civil day. Multiple entries per
// day are allowed; the latest one wins on date ties by insertion order.
type Log struct {
	ID        int       `json:"id"`
	UserID    int       `json:"-"`
	Weight    float64   `json:"weight"`
	Date      time.Time `json:"date"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
