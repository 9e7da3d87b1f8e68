package slots

import (
	"testing"
	"time"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "already aligned",
			input:    time.Date(2026, 2, 14, 16, 15, 0, 0, time.UTC),
			expected: time.Date(2026, 2, 14, 16, 15, 0, 0, time.UTC),
		},
		{
			name:     "truncates within slot",
			input:    time.Date(2026, 2, 14, 16, 22, 30, 0, time.UTC),
			expected: time.Date(2026, 2, 14, 16, 15, 0, 0, time.UTC),
		},
		{
			name:     "converts to UTC",
			input:    time.Date(2026, 2, 14, 18, 7, 0, 0, time.FixedZone("CET", 2*60*60)),
			expected: time.Date(2026, 2, 14, 16, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Align(tt.input); !got.Equal(tt.expected) {
				t.Errorf("Align() expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIsAligned(t *testing.T) {
	aligned := time.Date(2026, 2, 14, 16, 45, 0, 0, time.UTC)
	if !IsAligned(aligned) {
		t.Errorf("IsAligned(%v) expected true", aligned)
	}
	if IsAligned(aligned.Add(time.Minute)) {
		t.Errorf("IsAligned(%v) expected false", aligned.Add(time.Minute))
	}
}

func TestNext(t *testing.T) {
	on := time.Date(2026, 2, 14, 16, 30, 0, 0, time.UTC)
	if got := Next(on); !got.Equal(on) {
		t.Errorf("Next() on boundary expected %v, got %v", on, got)
	}
	between := time.Date(2026, 2, 14, 16, 31, 0, 0, time.UTC)
	expected := time.Date(2026, 2, 14, 16, 45, 0, 0, time.UTC)
	if got := Next(between); !got.Equal(expected) {
		t.Errorf("Next() expected %v, got %v", expected, got)
	}
}

func TestAdd(t *testing.T) {
	start := time.Date(2026, 2, 14, 23, 45, 0, 0, time.UTC)
	expected := time.Date(2026, 2, 15, 0, 15, 0, 0, time.UTC)
	if got := Add(start, 2); !got.Equal(expected) {
		t.Errorf("Add(2) expected %v, got %v", expected, got)
	}
	if got := Add(expected, -2); !got.Equal(start) {
		t.Errorf("Add(-2) expected %v, got %v", start, got)
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name  string
		d     time.Duration
		slots int
		exact bool
	}{
		{name: "one slot", d: 15 * time.Minute, slots: 1, exact: true},
		{name: "two hours", d: 2 * time.Hour, slots: 8, exact: true},
		{name: "not a multiple", d: 25 * time.Minute, slots: 1, exact: false},
		{name: "negative", d: -15 * time.Minute, slots: 0, exact: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, exact := Count(tt.d)
			if slots != tt.slots || exact != tt.exact {
				t.Errorf("Count(%v) expected (%d, %v), got (%d, %v)", tt.d, tt.slots, tt.exact, slots, exact)
			}
		})
	}
}

func TestFromIso(t *testing.T) {
	expected := time.Date(2026, 2, 14, 16, 0, 0, 0, time.UTC)
	if got := FromIso("2026-02-14T18:00:00+02:00"); !got.Equal(expected) {
		t.Errorf("FromIso() expected %v, got %v", expected, got)
	}
	if got := FromIso("not-a-time"); !got.IsZero() {
		t.Errorf("FromIso() on garbage expected zero time, got %v", got)
	}
}
