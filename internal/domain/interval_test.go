package domain

import (
	"encoding/json"
	"testing"
)

func TestNewIntervalResolvesOffsets(t *testing.T) {
	cases := []struct {
		unit  IntervalUnit
		value int
		days  int
		label string
	}{
		{UnitWeeks, 0, 0, "Initial"},
		{UnitDays, 5, 5, "Day 5"},
		{UnitWeeks, 4, 28, "Week 4"},
		{UnitMonths, 2, 60, "Month 2"},
	}
	for _, tc := range cases {
		iv := NewInterval(tc.unit, tc.value)
		if iv.OffsetDays != tc.days {
			t.Errorf("%s %d: offset %d, want %d", tc.unit, tc.value, iv.OffsetDays, tc.days)
		}
		if got := iv.Label(); got != tc.label {
			t.Errorf("%s %d: label %q, want %q", tc.unit, tc.value, got, tc.label)
		}
	}
}

// Two intervals resolving to the same day count keep distinct labels.
func TestLabelDerivedFromUnitNotOffset(t *testing.T) {
	day28 := NewInterval(UnitDays, 28)
	week4 := NewInterval(UnitWeeks, 4)
	if day28.OffsetDays != week4.OffsetDays {
		t.Fatalf("expected equal offsets")
	}
	if day28.Label() == week4.Label() {
		t.Fatalf("labels must differ: both %q", day28.Label())
	}
}

// Stored interval lists come in two shapes: legacy bare day counts and
// the rich object form. Both must parse; the rich form round-trips its
// unit metadata exactly.
func TestParseIntervalsLegacyShape(t *testing.T) {
	intervals, err := ParseIntervals([]byte(`[0, 7, 14, 5, 28]`))
	if err != nil {
		t.Fatalf("parse legacy: %v", err)
	}
	wantLabels := []string{"Initial", "Week 1", "Week 2", "Day 5", "Week 4"}
	for i, w := range wantLabels {
		if got := intervals[i].Label(); got != w {
			t.Errorf("interval %d: label %q, want %q", i, got, w)
		}
	}
}

func TestParseIntervalsRichShapeRoundTrip(t *testing.T) {
	original := []ScheduleInterval{
		NewInterval(UnitWeeks, 0),
		NewInterval(UnitDays, 28),
		NewInterval(UnitMonths, 3),
	}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ParseIntervals(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(back) != len(original) {
		t.Fatalf("length changed: %d -> %d", len(original), len(back))
	}
	for i := range original {
		if back[i] != original[i] {
			t.Errorf("interval %d changed: %+v -> %+v", i, original[i], back[i])
		}
	}
}

func TestParseIntervalsMalformed(t *testing.T) {
	for _, raw := range []string{`{"not":"a list"}`, `[true]`, `garbage`} {
		if _, err := ParseIntervals([]byte(raw)); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestValidateIntervals(t *testing.T) {
	good := []ScheduleInterval{NewInterval(UnitWeeks, 0), NewInterval(UnitDays, 3)}
	if err := ValidateIntervals(good); err != nil {
		t.Fatalf("valid intervals rejected: %v", err)
	}
	bad := []ScheduleInterval{{OffsetDays: -1, Unit: UnitDays, Value: -1}}
	if err := ValidateIntervals(bad); err == nil {
		t.Fatalf("negative offset accepted")
	}
}

func TestValidateCycles(t *testing.T) {
	good := []FTCycle{{Number: 1, ThawDay: 1, TestDay: 2}, {Number: 2, ThawDay: 3, TestDay: 4}}
	if err := ValidateCycles(good); err != nil {
		t.Fatalf("valid cycles rejected: %v", err)
	}

	testNotAfterThaw := []FTCycle{{Number: 1, ThawDay: 2, TestDay: 2}}
	if err := ValidateCycles(testNotAfterThaw); err == nil {
		t.Fatalf("test==thaw accepted")
	}

	// one bad pair poisons the whole set
	mixed := []FTCycle{{Number: 1, ThawDay: 1, TestDay: 2}, {Number: 2, ThawDay: 5, TestDay: 4}}
	if err := ValidateCycles(mixed); err == nil {
		t.Fatalf("set with one invalid pair accepted")
	}

	nonContiguous := []FTCycle{{Number: 1, ThawDay: 1, TestDay: 2}, {Number: 3, ThawDay: 3, TestDay: 4}}
	if err := ValidateCycles(nonContiguous); err == nil {
		t.Fatalf("non-contiguous numbering accepted")
	}
}
