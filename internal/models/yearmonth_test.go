package models

import (
	"testing"
	"time"
)

func TestYearMonthDaysIn(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2024-02", 29},
		{"2023-02", 28},
		{"1900-02", 28},
		{"2000-02", 29},
		{"2024-04", 30},
		{"2024-12", 31},
	}
	for _, tt := range tests {
		ym, err := ParseYearMonth(tt.in)
		if err != nil {
			t.Fatalf("ParseYearMonth(%q) error = %v", tt.in, err)
		}
		if got := ym.DaysIn(); got != tt.want {
			t.Errorf("%s.DaysIn() = %d, want %d", tt.in, got, tt.want)
		}
		if ym.String() != tt.in {
			t.Errorf("String() = %q, want %q", ym.String(), tt.in)
		}
	}
}

func TestYearMonthNavigation(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.December}
	if got := ym.Next().String(); got != "2025-01" {
		t.Errorf("Next() = %s, want 2025-01", got)
	}
	if got := ym.Prev().String(); got != "2024-11" {
		t.Errorf("Prev() = %s, want 2024-11", got)
	}
	if got := (YearMonth{Year: 2024, Month: time.January}).Prev().String(); got != "2023-12" {
		t.Errorf("Prev() = %s, want 2023-12", got)
	}
}

func TestYearMonthDates(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.February}
	if ym.First() != "2024-02-01" || ym.Last() != "2024-02-29" {
		t.Errorf("First/Last = %s/%s", ym.First(), ym.Last())
	}
	if !ym.Contains("2024-02-15") || ym.Contains("2024-03-01") {
		t.Error("Contains() returned wrong result")
	}
	if got := ym.Day(3).Unix(); got != 1706918400 {
		t.Errorf("Day(3).Unix() = %d, want 1706918400", got)
	}
	if _, err := ParseYearMonth("2024/02"); err == nil {
		t.Error("ParseYearMonth should reject 2024/02")
	}
}

func TestToggleDay(t *testing.T) {
	days, saved := ToggleDay(nil, "2024-03-10")
	if !saved || len(days) != 1 {
		t.Fatalf("first toggle = %v, %v", days, saved)
	}
	days, saved = ToggleDay(days, "2024-03-10")
	if saved || len(days) != 0 {
		t.Fatalf("second toggle = %v, %v", days, saved)
	}
}
