package models

import (
	"fmt"
	"strings"
	"time"
)

// ZodiacSign is one of the twelve western zodiac signs.
type ZodiacSign string

const (
	Aries       ZodiacSign = "Aries"
	Taurus      ZodiacSign = "Taurus"
	Gemini      ZodiacSign = "Gemini"
	Cancer      ZodiacSign = "Cancer"
	Leo         ZodiacSign = "Leo"
	Virgo       ZodiacSign = "Virgo"
	Libra       ZodiacSign = "Libra"
	Scorpio     ZodiacSign = "Scorpio"
	Sagittarius ZodiacSign = "Sagittarius"
	Capricorn   ZodiacSign = "Capricorn"
	Aquarius    ZodiacSign = "Aquarius"
	Pisces      ZodiacSign = "Pisces"
)

// ZodiacSigns lists every sign in calendar order starting with Aries.
var ZodiacSigns = []ZodiacSign{
	Aries, Taurus, Gemini, Cancer, Leo, Virgo,
	Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces,
}

type signRange struct {
	sign       ZodiacSign
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
}

// Capricorn wraps the year end and is the fallback.
var signTable = []signRange{
	{Aquarius, time.January, 20, time.February, 18},
	{Pisces, time.February, 19, time.March, 20},
	{Aries, time.March, 21, time.April, 19},
	{Taurus, time.April, 20, time.May, 20},
	{Gemini, time.May, 21, time.June, 20},
	{Cancer, time.June, 21, time.July, 22},
	{Leo, time.July, 23, time.August, 22},
	{Virgo, time.August, 23, time.September, 22},
	{Libra, time.September, 23, time.October, 22},
	{Scorpio, time.October, 23, time.November, 21},
	{Sagittarius, time.November, 22, time.December, 21},
}

// CalculateZodiacSign returns the sign for a birth month and day.
func CalculateZodiacSign(month time.Month, day int) ZodiacSign {
	for _, r := range signTable {
		if (month == r.startMonth && day >= r.startDay) || (month == r.endMonth && day <= r.endDay) {
			return r.sign
		}
	}
	return Capricorn
}

// ZodiacSignForDate returns the sign for a YYYY-MM-DD birthdate.
func ZodiacSignForDate(birthdate string) (ZodiacSign, error) {
	t, err := time.Parse("2006-01-02", birthdate)
	if err != nil {
		return "", fmt.Errorf("invalid birthdate %q (expected YYYY-MM-DD): %w", birthdate, err)
	}
	return CalculateZodiacSign(t.Month(), t.Day()), nil
}

// ParseZodiacSign matches a sign name case-insensitively.
func ParseZodiacSign(s string) (ZodiacSign, error) {
	name := strings.TrimSpace(s)
	for _, sign := range ZodiacSigns {
		if strings.EqualFold(string(sign), name) {
			return sign, nil
		}
	}
	return "", fmt.Errorf("unknown zodiac sign %q", s)
}
