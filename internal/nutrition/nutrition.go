package nutrition

import "time"

// Log is one intake event: a food, a drink, or plain water. Macro fields are
// independently optional; a missing value means "not known", not zero.
type Log struct {
	ID          int       `json:"id"`
	UserID      int       `json:"-"`
	LoggedAt    time.Time `json:"logged_at"`
	RawInput    *string   `json:"raw_input,omitempty"`
	Description string    `json:"description"`
	Calories    *int      `json:"calories"`
	ProteinG    *float64  `json:"protein_g"`
	CarbsG      *float64  `json:"carbs_g"`
	FatG        *float64  `json:"fat_g"`
	FiberG      *float64  `json:"fiber_g"`
	WaterOz     *float64  `json:"water_oz"`
	MealType    *string   `json:"meal_type,omitempty"`
	USDAFDCID   *int      `json:"usda_fdc_id,omitempty"`
}

// Totals are the coalesce-to-zero sums over a set of logs: a null macro
// contributes zero to its sum, it does not exclude the row.
type Totals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	WaterOz  float64 `json:"water_oz"`
}
