package handlers

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{90 * time.Second, "1 minute, 30 seconds"},
		{2*time.Hour + 5*time.Second, "2 hours"},
		{26*time.Hour + 15*time.Minute, "1 day, 2 hours"},
		{-3 * time.Minute, "3 minutes"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%s): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
