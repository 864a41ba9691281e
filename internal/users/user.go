package users

import "time"

// Goal defaults applied when a user record has no explicit value set.
const (
	DefaultCalorieGoal  = 2000
	DefaultProteinGoal  = 150
	DefaultCarbGoal     = 200
	DefaultFatGoal      = 65
	DefaultWaterGoal    = 64
	DefaultTargetWeight = 180.0
)

// User is a tracked person, keyed by an opaque external identity
// (the discord user id). Created lazily on first contact.
type User struct {
	ID          int       `json:"id"`
	DiscordID   string    `json:"discordId"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`

	TargetWeight     *float64 `json:"targetWeight,omitempty"`
	DailyCalorieGoal *int     `json:"dailyCalorieGoal,omitempty"`
	DailyProteinGoal *int     `json:"dailyProteinGoal,omitempty"`
	DailyCarbGoal    *int     `json:"dailyCarbGoal,omitempty"`
	DailyFatGoal     *int     `json:"dailyFatGoal,omitempty"`
	DailyWaterGoal   *int     `json:"dailyWaterGoal,omitempty"`
}

// Goals is the full six-field goal set; writes replace all fields atomically.
type Goals struct {
	TargetWeight     float64 `json:"target_weight"`
	DailyCalorieGoal int     `json:"daily_calorie_goal"`
	DailyProteinGoal int     `json:"daily_protein_goal"`
	DailyCarbGoal    int     `json:"daily_carb_goal"`
	DailyFatGoal     int     `json:"daily_fat_goal"`
	DailyWaterGoal   int     `json:"daily_water_goal"`
}

// Goals returns the user's goals with defaults substituted for unset fields.
func (u *User) Goals() Goals {
	g := Goals{
		TargetWeight:     DefaultTargetWeight,
		DailyCalorieGoal: DefaultCalorieGoal,
		DailyProteinGoal: DefaultProteinGoal,
		DailyCarbGoal:    DefaultCarbGoal,
		DailyFatGoal:     DefaultFatGoal,
		DailyWaterGoal:   DefaultWaterGoal,
	}
	if u.TargetWeight != nil {
		g.TargetWeight = *u.TargetWeight
	}
	if u.DailyCalorieGoal != nil {
		g.DailyCalorieGoal = *u.DailyCalorieGoal
	}
	if u.DailyProteinGoal != nil {
		g.DailyProteinGoal = *u.DailyProteinGoal
	}
	if u.DailyCarbGoal != nil {
		g.DailyCarbGoal = *u.DailyCarbGoal
	}
	if u.DailyFatGoal != nil {
		g.DailyFatGoal = *u.DailyFatGoal
	}
	if u.DailyWaterGoal != nil {
		g.DailyWaterGoal = *u.DailyWaterGoal
	}
	return g
}

// CalorieGoal returns the effective calorie goal (default substituted).
func (u *User) CalorieGoal() int {
	if u.DailyCalorieGoal != nil {
		return *u.DailyCalorieGoal
	}
	return DefaultCalorieGoal
}

// ProteinGoal returns the effective protein goal in grams.
func (u *User) ProteinGoal() int {
	if u.DailyProteinGoal != nil {
		return *u.DailyProteinGoal
	}
	return DefaultProteinGoal
}

// WaterGoal returns the effective water goal in ounces.
func (u *User) WaterGoal() int {
	if u.DailyWaterGoal != nil {
		return *u.DailyWaterGoal
	}
	return DefaultWaterGoal
}

// DeriveDisplayName builds the default display name for a fresh user.
func DeriveDisplayName(discordID string) string {
	if len(discordID) > 8 {
		discordID = discordID[:8]
	}
	return "User_" + discordID
}
