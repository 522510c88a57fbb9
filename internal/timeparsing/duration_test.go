package timeparsing

import (
	"testing"
	"time"
)

func TestParseCompactDuration(t *testing.T) {
	// Wednesday, 15 January 2025, 10:00 UTC
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"-12h", time.Date(2025, 1, 14, 22, 0, 0, 0, time.UTC)},
		{"-3d", time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)},
		{"-2w", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"-1m", time.Date(2024, 12, 15, 10, 0, 0, 0, time.UTC)},
		{"-1y", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		{"-0d", now},
		{"-400d", time.Date(2023, 12, 12, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCompactDuration(tt.input, now)
			if err != nil {
				t.Fatalf("ParseCompactDuration(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseCompactDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCompactDurationRejects(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	for _, input := range []string{"", "d", "-d", "3", "-3x", "-3 d", "- 3d", "-3D", "3 days ago", "-1.5d"} {
		if _, err := ParseCompactDuration(input, now); err == nil {
			t.Errorf("ParseCompactDuration(%q) succeeded, want error", input)
		}
	}
}

func TestParseCompactDurationKeepsLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, berlin)

	got, err := ParseCompactDuration("-1d", now)
	if err != nil {
		t.Fatalf("ParseCompactDuration error: %v", err)
	}
	if got.Location() != berlin {
		t.Errorf("location = %v, want %v", got.Location(), berlin)
	}
	if got.Hour() != 10 || got.Day() != 14 {
		t.Errorf("got %v, want 2025-01-14 10:00 Berlin", got)
	}
}
