package horoscope

import (
	"context"
	"fmt"
	"testing"

	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/remote/horoscopeapi"
)

type fakeSource struct {
	calls []string
	err   error
}

func (f *fakeSource) Daily(_ context.Context, sign, day string) (horoscopeapi.Reading, error) {
	f.calls = append(f.calls, "daily:"+sign+":"+day)
	return horoscopeapi.Reading{Date: day, HoroscopeData: " daily for " + sign + " "}, f.err
}

func (f *fakeSource) Weekly(_ context.Context, sign string) (horoscopeapi.Reading, error) {
	f.calls = append(f.calls, "weekly:"+sign)
	return horoscopeapi.Reading{Week: "this week", HoroscopeData: "weekly"}, f.err
}

func (f *fakeSource) Monthly(_ context.Context, sign string) (horoscopeapi.Reading, error) {
	f.calls = append(f.calls, "monthly:"+sign)
	return horoscopeapi.Reading{Month: "this month", HoroscopeData: "monthly"}, f.err
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name     string
		g        models.Granularity
		day      string
		wantCall string
		wantKey  string
		wantText string
	}{
		{"daily default day", models.GranularityDaily, "", "daily:Leo:TODAY", "TODAY", "daily for Leo"},
		{"daily keyword", models.GranularityDaily, "tomorrow", "daily:Leo:TOMORROW", "TOMORROW", "daily for Leo"},
		{"daily date", models.GranularityDaily, "2024-03-10", "daily:Leo:2024-03-10", "2024-03-10", "daily for Leo"},
		{"weekly", models.GranularityWeekly, "ignored", "weekly:Leo", "week", "weekly"},
		{"monthly", models.GranularityMonthly, "", "monthly:Leo", "month", "monthly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			a, err := NewFetcher(src).Fetch(context.Background(), models.Leo, tt.g, tt.day)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if len(src.calls) != 1 || src.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want exactly [%s]", src.calls, tt.wantCall)
			}
			if a.Key != tt.wantKey || a.Text != tt.wantText || a.Sign != models.Leo || a.Granularity != tt.g {
				t.Errorf("Fetch() = %+v", a)
			}
		})
	}
}

func TestFetchRejectsBadInputWithoutCalling(t *testing.T) {
	tests := []struct {
		name string
		sign models.ZodiacSign
		g    models.Granularity
		day  string
	}{
		{"unknown sign", "Ophiuchus", models.GranularityDaily, ""},
		{"bad day", models.Leo, models.GranularityDaily, "next week"},
		{"bad granularity", models.Leo, "yearly", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			_, err := NewFetcher(src).Fetch(context.Background(), tt.sign, tt.g, tt.day)
			if !errors.IsKind(err, errors.KindInvalidInput) {
				t.Errorf("Fetch() error = %v, want invalid input", err)
			}
			if len(src.calls) != 0 {
				t.Errorf("calls = %v, want none", src.calls)
			}
		})
	}
}

func TestFetchFailureIsTyped(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("connection reset")}
	a, err := NewFetcher(src).Fetch(context.Background(), models.Pisces, models.GranularityWeekly, "")
	if !errors.IsKind(err, errors.KindTransient) {
		t.Errorf("Fetch() error = %v, want transient", err)
	}
	if got := Message(a, err); got != constants.AdviceUnavailable {
		t.Errorf("Message() = %q, want %q", got, constants.AdviceUnavailable)
	}
}

func TestMessage(t *testing.T) {
	if got := Message(models.Advice{Text: "stars align"}, nil); got != "stars align" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(models.Advice{}, nil); got != constants.AdviceUnavailable {
		t.Errorf("Message(empty) = %q", got)
	}
}
