package workouts

import (
	"fmt"
	"time"
)

// Type is the closed set of workout categories.
type Type string

const (
	TypeCardio      Type = "cardio"
	TypeStrength    Type = "strength"
	TypeFlexibility Type = "flexibility"
	TypeSports      Type = "sports"
	TypeWalking     Type = "walking"
	TypeOther       Type = "other"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeCardio, TypeStrength, TypeFlexibility, TypeSports, TypeWalking, TypeOther:
		return t, nil
	}
	return "", fmt.Errorf("unknown workout type: %q", s)
}

type Workout struct {
	ID              int       `json:"id"`
	UserID          int       `json:"-"`
	Date            time.Time `json:"date"`
	Type            Type      `json:"workout_type"`
	DurationMinutes *int      `json:"duration_minutes"`
	CaloriesBurned  *int      `json:"calories_burned"`
	Description     *string   `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
