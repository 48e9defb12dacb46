package reportbro

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value   float64
		pattern string
		locale  string
		want    string
	}{
		{1234.5, "#,##0.00", "en", "1,234.50"},
		{1234.5, "#,##0.00", "de", "1.234,50"},
		{1234.5, "0.00", "en", "1234.50"},
		{1234.567, "0.00", "en", "1234.57"},
		{1234.6, "0", "en", "1235"},
		{12.0, "0.##", "en", "12"},
		{12.346, "0.##", "en", "12.35"},
		{9.99, "$ #,##0.00", "en", "$ 9.99"},
		{9.99, "#,##0.00 $", "de", "9,99 $"},
	}
	for _, tt := range tests {
		got, err := formatNumber(tt.value, tt.pattern, tt.locale)
		if err != nil {
			t.Errorf("formatNumber(%g, %q, %q): %v", tt.value, tt.pattern, tt.locale, err)
			continue
		}
		if got != tt.want {
			t.Errorf("formatNumber(%g, %q, %q) = %q, want %q",
				tt.value, tt.pattern, tt.locale, got, tt.want)
		}
	}
}

func TestFormatNumberInvalidPattern(t *testing.T) {
	for _, pattern := range []string{"abc", "0.0.0", ""} {
		if _, err := formatNumber(12.5, pattern, "en"); err == nil {
			t.Errorf("formatNumber with pattern %q: expected error", pattern)
		}
	}
}

func TestFormatDate(t *testing.T) {
	value := time.Date(2021, time.March, 7, 14, 5, 9, 0, time.UTC)
	tests := []struct {
		pattern string
		want    string
	}{
		{"dd.MM.yyyy", "07.03.2021"},
		{"d. MMMM yyyy", "7. March 2021"},
		{"yyyy-MM-dd HH:mm:ss", "2021-03-07 14:05:09"},
		{"EEE, MMM d yy", "Sun, Mar 7 21"},
		{"h:mm a", "2:05 PM"},
	}
	for _, tt := range tests {
		got, err := formatDate(value, tt.pattern)
		if err != nil {
			t.Errorf("formatDate(%q): %v", tt.pattern, err)
			continue
		}
		if got != tt.want {
			t.Errorf("formatDate(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestFormatDateInvalidPattern(t *testing.T) {
	value := time.Date(2021, time.March, 7, 14, 5, 9, 0, time.UTC)
	if _, err := formatDate(value, "dd.QQ.yyyy"); err == nil {
		t.Error("formatDate with unknown pattern token: expected error")
	}
}
