package cmd

import (
	"testing"
	"time"
)

func TestMonthRange(t *testing.T) {
	tests := []struct {
		month     string
		wantStart string
		wantEnd   string
	}{
		{"2026-03", "2026-03-01T00:00:00Z", "2026-03-31T23:59:59Z"},
		{"2026-02", "2026-02-01T00:00:00Z", "2026-02-28T23:59:59Z"},
		{"2024-02", "2024-02-01T00:00:00Z", "2024-02-29T23:59:59Z"},
		{"2026-12", "2026-12-01T00:00:00Z", "2026-12-31T23:59:59Z"},
	}
	for _, tt := range tests {
		start, end, label, err := monthRange(tt.month)
		if err != nil {
			t.Errorf("monthRange(%q) error: %v", tt.month, err)
			continue
		}
		if got := start.Format(time.RFC3339); got != tt.wantStart {
			t.Errorf("monthRange(%q) start = %s, want %s", tt.month, got, tt.wantStart)
		}
		if got := end.Format(time.RFC3339); got != tt.wantEnd {
			t.Errorf("monthRange(%q) end = %s, want %s", tt.month, got, tt.wantEnd)
		}
		if label != tt.month {
			t.Errorf("monthRange(%q) label = %q", tt.month, label)
		}
	}
}

func TestMonthRangeInvalid(t *testing.T) {
	for _, month := range []string{"2026", "March", "2026-13", "03-2026"} {
		if _, _, _, err := monthRange(month); err == nil {
			t.Errorf("monthRange(%q): expected error", month)
		}
	}
}

func TestMonthRangeDefaultsToCurrentMonth(t *testing.T) {
	start, end, label, err := monthRange("")
	if err != nil {
		t.Fatalf("monthRange(\"\"): %v", err)
	}
	if label != time.Now().Format("2006-01") {
		t.Errorf("monthRange(\"\") label = %q, want current month", label)
	}
	if !start.Before(end) {
		t.Errorf("monthRange(\"\") start %v not before end %v", start, end)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"a longer string", 10, "a longer …"},
		{"ünïcödé nämé here", 10, "ünïcödé n…"},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.width); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	if got := check(true); got != "✓" {
		t.Errorf("check(true) = %q", got)
	}
	if got := check(false); got != "" {
		t.Errorf("check(false) = %q", got)
	}
}

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("from", "2026-08-01")
	if err != nil {
		t.Fatalf("parseDateFlag: %v", err)
	}
	if got == nil || got.Format("2006-01-02") != "2026-08-01" {
		t.Errorf("parseDateFlag = %v, want 2026-08-01", got)
	}

	got, err = parseDateFlag("from", "")
	if err != nil || got != nil {
		t.Errorf("parseDateFlag(\"\") = %v, %v, want nil, nil", got, err)
	}

	if _, err := parseDateFlag("from", "08/01/2026"); err == nil {
		t.Error("parseDateFlag(08/01/2026): expected error")
	}
}
