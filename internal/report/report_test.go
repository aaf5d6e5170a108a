package report

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d): expected '%s', got '%s'", tt.in, tt.want, got)
		}
	}
}

func TestNoData(t *testing.T) {
	nd := NewNoData()
	if nd.Error != "No AI bot requests found" {
		t.Errorf("Expected the no-data message, got '%s'", nd.Error)
	}
	if ErrNoData.Error() != nd.Error {
		t.Error("Expected ErrNoData to carry the same message")
	}
}
