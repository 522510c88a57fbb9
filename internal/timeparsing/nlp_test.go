package timeparsing

import (
	"errors"
	"testing"
	"time"
)

// Wednesday, 15 January 2025, 10:00 UTC
var refNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestParseNaturalLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"yesterday", time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)},
		{"3 days ago", time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNaturalLanguage(tt.input, refNow)
			if err != nil {
				t.Fatalf("ParseNaturalLanguage(%q) error: %v", tt.input, err)
			}
			if got.Year() != tt.want.Year() || got.YearDay() != tt.want.YearDay() {
				t.Errorf("ParseNaturalLanguage(%q) = %v, want day of %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNaturalLanguageLastWeekday(t *testing.T) {
	got, err := ParseNaturalLanguage("last monday", refNow)
	if err != nil {
		t.Fatalf("ParseNaturalLanguage error: %v", err)
	}
	if got.Weekday() != time.Monday {
		t.Errorf("weekday = %v, want Monday", got.Weekday())
	}
	if !got.Before(refNow) || refNow.Sub(got) > 14*24*time.Hour {
		t.Errorf("got %v, want a recent Monday before %v", got, refNow)
	}
}

func TestParseNaturalLanguageRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "not-a-date"} {
		_, err := ParseNaturalLanguage(input, refNow)
		if !errors.Is(err, ErrUnrecognized) {
			t.Errorf("ParseNaturalLanguage(%q) error = %v, want ErrUnrecognized", input, err)
		}
	}
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"compact offset", "-3d", time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)},
		{"unsigned offset counts back", "3d", time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)},
		{"hours", "12h", time.Date(2025, 1, 14, 22, 0, 0, 0, time.UTC)},
		{"surrounding space", "  -1w ", time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)},
		{"date is midnight", "2025-01-01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"today's date", "2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2025-01-10T08:30:00Z", time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)},
		{"now", "0d", refNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSince(tt.input, refNow)
			if err != nil {
				t.Fatalf("ParseSince(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseSince(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSinceNaturalLanguage(t *testing.T) {
	got, err := ParseSince("yesterday", refNow)
	if err != nil {
		t.Fatalf("ParseSince error: %v", err)
	}
	if got.Day() != 14 || got.Month() != time.January {
		t.Errorf("ParseSince(yesterday) = %v, want 14 January", got)
	}
}

func TestParseSinceRejectsFuture(t *testing.T) {
	for _, input := range []string{"+2d", "+6h", "2025-02-01", "2025-01-16T00:00:00Z", "tomorrow"} {
		_, err := ParseSince(input, refNow)
		if !errors.Is(err, ErrFuture) {
			t.Errorf("ParseSince(%q) error = %v, want ErrFuture", input, err)
		}
	}
}

func TestParseSinceRejectsUnrecognized(t *testing.T) {
	for _, input := range []string{"", "not-a-date"} {
		_, err := ParseSince(input, refNow)
		if !errors.Is(err, ErrUnrecognized) {
			t.Errorf("ParseSince(%q) error = %v, want ErrUnrecognized", input, err)
		}
	}
}

func TestParseSinceDateUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, loc)

	got, err := ParseSince("2025-01-02", now)
	if err != nil {
		t.Fatalf("ParseSince error: %v", err)
	}
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("ParseSince = %v, want %v", got, want)
	}
}
