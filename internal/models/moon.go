package models

import "strings"

// MoonPhase is one calendar day's lunar data, keyed by date.
type MoonPhase struct {
	Date         string  `json:"date"` // YYYY-MM-DD format
	Phase        string  `json:"phase"`
	Illumination float64 `json:"illumination"` // 0.0 - 1.0
	IsFavorited  bool    `json:"is_favorited"`
	ZodiacSign   *string `json:"zodiac_sign,omitempty"`
	Advice       *string `json:"advice,omitempty"`
	Mood         *string `json:"mood,omitempty"`
}

// IlluminationPercent returns the illumination rounded to a whole percentage.
func (m MoonPhase) IlluminationPercent() int {
	return int(m.Illumination*100 + 0.5)
}

// Glyph returns a moon emoji for the phase label, or a blank moon for unknown labels.
func (m MoonPhase) Glyph() string {
	return PhaseGlyph(m.Phase)
}

// PhaseGlyph maps a phase label such as "Waxing Gibbous" or "1st Quarter" to an emoji.
func PhaseGlyph(phase string) string {
	p := strings.ToLower(phase)
	switch {
	case strings.Contains(p, "new"):
		return "🌑"
	case strings.Contains(p, "full"):
		return "🌕"
	case strings.Contains(p, "waxing") && strings.Contains(p, "crescent"):
		return "🌒"
	case strings.Contains(p, "waxing") && strings.Contains(p, "gibbous"):
		return "🌔"
	case strings.Contains(p, "waning") && strings.Contains(p, "gibbous"):
		return "🌖"
	case strings.Contains(p, "waning") && strings.Contains(p, "crescent"):
		return "🌘"
	case strings.Contains(p, "first") || strings.Contains(p, "1st"):
		return "🌓"
	case strings.Contains(p, "last") || strings.Contains(p, "third") || strings.Contains(p, "3rd"):
		return "🌗"
	default:
		return "○"
	}
}
