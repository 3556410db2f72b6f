package domain

import (
	"encoding/json"
	"fmt"
)

// IntervalUnit is the unit the user originally picked for a checkpoint.
// It is preserved alongside the resolved day offset so labels can be
// reconstructed without guessing from the day count.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
)

// Days per unit when resolving an interval to a day offset. Months use
// a fixed 30-day convention; the checkpoint label still says "Month N".
const (
	daysPerWeek  = 7
	daysPerMonth = 30
)

// ScheduleInterval is one periodic-test checkpoint: a day offset from
// the product start date plus the unit/value the user entered.
type ScheduleInterval struct {
	OffsetDays int          `json:"offsetDays" bson:"offsetDays"`
	Unit       IntervalUnit `json:"unit,omitempty" bson:"unit,omitempty"`
	Value      int          `json:"value,omitempty" bson:"value,omitempty"`
}

// NewInterval builds an interval from a unit/value pair, resolving the
// day offset. A value of 0 is the initial checkpoint regardless of unit.
func NewInterval(unit IntervalUnit, value int) ScheduleInterval {
	iv := ScheduleInterval{Unit: unit, Value: value}
	switch unit {
	case UnitWeeks:
		iv.OffsetDays = value * daysPerWeek
	case UnitMonths:
		iv.OffsetDays = value * daysPerMonth
	default:
		iv.OffsetDays = value
	}
	return iv
}

// intervalFromDayCount normalizes a legacy bare day count into the rich
// shape, inferring the unit: multiples of seven read as weeks, anything
// else as days.
func intervalFromDayCount(days int) ScheduleInterval {
	if days > 0 && days%daysPerWeek == 0 {
		return ScheduleInterval{OffsetDays: days, Unit: UnitWeeks, Value: days / daysPerWeek}
	}
	return ScheduleInterval{OffsetDays: days, Unit: UnitDays, Value: days}
}

// Label derives the display name for the checkpoint. Offset zero is
// always "Initial"; otherwise the label comes from the original
// unit/value, so Week 4 and Day 28 render differently even though they
// resolve to the same day.
func (iv ScheduleInterval) Label() string {
	if iv.OffsetDays == 0 {
		return "Initial"
	}
	switch iv.Unit {
	case UnitWeeks:
		return fmt.Sprintf("Week %d", iv.Value)
	case UnitMonths:
		return fmt.Sprintf("Month %d", iv.Value)
	case UnitDays:
		return fmt.Sprintf("Day %d", iv.Value)
	}
	// Unit metadata absent (legacy record that skipped normalization).
	return intervalFromDayCount(iv.OffsetDays).Label()
}

// UnmarshalJSON accepts both stored shapes: the rich object form and
// the legacy bare day-count number. Legacy values are normalized here,
// at the read boundary, so the rest of the code only ever sees the
// rich shape.
func (iv *ScheduleInterval) UnmarshalJSON(data []byte) error {
	var days int
	if err := json.Unmarshal(data, &days); err == nil {
		*iv = intervalFromDayCount(days)
		return nil
	}

	type richInterval ScheduleInterval // avoid recursing into this method
	var rich richInterval
	if err := json.Unmarshal(data, &rich); err != nil {
		return fmt.Errorf("schedule interval: %w", err)
	}
	if rich.Unit == "" {
		*iv = intervalFromDayCount(rich.OffsetDays)
		return nil
	}
	*iv = ScheduleInterval(rich)
	return nil
}

// ParseIntervals decodes a stored interval list, accepting both the
// legacy day-count shape and the rich shape.
func ParseIntervals(data []byte) ([]ScheduleInterval, error) {
	var intervals []ScheduleInterval
	if err := json.Unmarshal(data, &intervals); err != nil {
		return nil, err
	}
	return intervals, nil
}

// ValidateIntervals rejects negative offsets and non-positive values on
// intervals that carry unit metadata.
func ValidateIntervals(intervals []ScheduleInterval) error {
	for i, iv := range intervals {
		if iv.OffsetDays < 0 {
			return fmt.Errorf("interval %d: offset must not be negative", i)
		}
		if iv.Unit != "" && iv.Value < 0 {
			return fmt.Errorf("interval %d: value must not be negative", i)
		}
	}
	return nil
}
