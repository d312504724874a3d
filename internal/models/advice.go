package models

import (
	"fmt"
	"strings"
)

// Granularity is the time scope of a horoscope reading.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// ParseGranularity parses daily, weekly or monthly.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return g, nil
	}
	return "", fmt.Errorf("invalid granularity %q (expected daily, weekly or monthly)", s)
}

// Advice is a horoscope reading held in memory for display only.
type Advice struct {
	Sign        ZodiacSign  `json:"sign"`
	Granularity Granularity `json:"granularity"`
	Key         string      `json:"key"`    // day, week or month the reading was requested for
	Period      string      `json:"period"` // date descriptor chosen by the server
	Text        string      `json:"text"`
}
