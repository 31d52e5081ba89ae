package domain

import (
	"testing"
	"time"
)

func TestIntervalString(t *testing.T) {
	testCases := []struct {
		name     string
		interval Interval
		expected string
	}{
		{"one minute", Minutes(1), "1 min"},
		{"ten minutes", Minutes(10), "10 min"},
		{"single day", Days(1), "1 day"},
		{"plural days", Days(4), "4 days"},
		{"long interval", Days(364), "364 days"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.interval.String(); got != tc.expected {
				t.Errorf("Expected %q, but got %q", tc.expected, got)
			}
		})
	}
}

func TestIntervalDuration(t *testing.T) {
	if d := Minutes(10).Duration(); d != 10*time.Minute {
		t.Errorf("Expected 10 minutes, got %v", d)
	}
	if d := Days(4).Duration(); d != 4*24*time.Hour {
		t.Errorf("Expected 96 hours, got %v", d)
	}
}

func TestParseRating(t *testing.T) {
	r, err := ParseRating("Good")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r != Good {
		t.Errorf("Expected Good, got %v", r)
	}

	if _, err := ParseRating("Okay"); err == nil {
		t.Error("Expected an error for an unknown rating name")
	}
}
