package wellness

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Mood is a 1-5 ordinal, rendered by name on the wire.
type Mood int

const (
	MoodTerrible Mood = 1
	MoodBad      Mood = 2
	MoodOkay     Mood = 3
	MoodGood     Mood = 4
	MoodGreat    Mood = 5
)

var moodNames = map[Mood]string{
	MoodTerrible: "TERRIBLE",
	MoodBad:      "BAD",
	MoodOkay:     "OKAY",
	MoodGood:     "GOOD",
	MoodGreat:    "GREAT",
}

func (m Mood) Valid() bool {
	return m >= MoodTerrible && m <= MoodGreat
}

func (m Mood) String() string {
	if name, ok := moodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MOOD(%d)", int(m))
}

func (m Mood) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both the ordinal and the name form.
func (m *Mood) UnmarshalJSON(data []byte) error {
	if ordinal, err := strconv.Atoi(string(data)); err == nil {
		parsed := Mood(ordinal)
		if !parsed.Valid() {
			return fmt.Errorf("mood out of range: %d", ordinal)
		}
		*m = parsed
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("invalid mood: %s", data)
	}
	for mood, moodName := range moodNames {
		if moodName == name {
			*m = mood
			return nil
		}
	}
	return fmt.Errorf("unknown mood: %q", name)
}

// DailyMetric is the one-row-per-day wellness record. All value fields are
// optional; a later upsert for the same day only overwrites what it supplies.
type DailyMetric struct {
	ID           int       `json:"id"`
	UserID       int       `json:"-"`
	Date         time.Time `json:"date"`
	SleepHours   *float64  `json:"sleep_hours"`
	SleepQuality *int      `json:"sleep_quality"`
	Mood         *Mood     `json:"mood"`
	EnergyLevel  *int      `json:"energy_level"`
	Notes        *string   `json:"notes,omitempty"`
}
