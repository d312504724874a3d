package models

import (
	"slices"
	"time"
)

// Profile is the per-user document owned by the remote profile store.
type Profile struct {
	UID        string     `json:"uid"`
	Email      string     `json:"email"`
	Birthdate  string     `json:"birthdate"` // YYYY-MM-DD format
	ZodiacSign ZodiacSign `json:"zodiac_sign"`
	SavedDays  []string   `json:"saved_days"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasSavedDay reports whether date is one of the profile's favorites.
func (p Profile) HasSavedDay(date string) bool {
	return slices.Contains(p.SavedDays, date)
}

// ToggleDay returns a copy of days with date added if absent or removed if present,
// and whether date is saved afterwards.
func ToggleDay(days []string, date string) ([]string, bool) {
	if i := slices.Index(days, date); i >= 0 {
		return slices.Delete(slices.Clone(days), i, i+1), false
	}
	return append(slices.Clone(days), date), true
}
