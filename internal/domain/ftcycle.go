package domain

import (
	"errors"
	"fmt"
)

// FTCycleType selects how a product's freeze/thaw cycles are derived
// when no cycle template reference is set.
type FTCycleType string

const (
	FTConsecutive FTCycleType = "consecutive"
	FTWeekly      FTCycleType = "weekly"
	FTBiweekly    FTCycleType = "biweekly"
	FTCustom      FTCycleType = "custom"
)

// ValidFTCycleType reports whether t is one of the known keywords.
func ValidFTCycleType(t FTCycleType) bool {
	switch t {
	case FTConsecutive, FTWeekly, FTBiweekly, FTCustom:
		return true
	}
	return false
}

// FTCycle is one freeze/thaw pair: the sample is thawed on ThawDay and
// tested on TestDay, both day offsets from the product start date.
type FTCycle struct {
	Number  int `json:"cycle" bson:"cycle"`
	ThawDay int `json:"thawDay" bson:"thawDay"`
	TestDay int `json:"testDay" bson:"testDay"`
}

// ErrCycleOrder rejects cycle sets where a test is not strictly after
// its thaw. A set with any violation is rejected in full.
var ErrCycleOrder = errors.New("test day must be after thaw day")

// ValidateCycles checks a full cycle set: 1-based contiguous numbering,
// non-negative thaw offsets, and test strictly after thaw in each pair.
func ValidateCycles(cycles []FTCycle) error {
	for i, c := range cycles {
		if c.Number != i+1 {
			return fmt.Errorf("cycle %d: expected number %d, got %d", i, i+1, c.Number)
		}
		if c.ThawDay < 0 {
			return fmt.Errorf("cycle %d: thaw day must not be negative", c.Number)
		}
		if c.TestDay <= c.ThawDay {
			return fmt.Errorf("cycle %d: %w", c.Number, ErrCycleOrder)
		}
	}
	return nil
}
