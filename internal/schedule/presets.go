package schedule

import "stabtrack/stability-app/internal/domain"

// DefaultIntervals is the schedule applied when a product references no
// template: an initial test plus checks at weeks 1, 2, 4, 8 and 13.
func DefaultIntervals() []domain.ScheduleInterval {
	return []domain.ScheduleInterval{
		domain.NewInterval(domain.UnitWeeks, 0),
		domain.NewInterval(domain.UnitWeeks, 1),
		domain.NewInterval(domain.UnitWeeks, 2),
		domain.NewInterval(domain.UnitWeeks, 4),
		domain.NewInterval(domain.UnitWeeks, 8),
		domain.NewInterval(domain.UnitWeeks, 13),
	}
}

// LongTermIntervals is the second built-in preset: monthly checks out
// to one year after the standard early checkpoints.
func LongTermIntervals() []domain.ScheduleInterval {
	return []domain.ScheduleInterval{
		domain.NewInterval(domain.UnitWeeks, 0),
		domain.NewInterval(domain.UnitWeeks, 2),
		domain.NewInterval(domain.UnitMonths, 1),
		domain.NewInterval(domain.UnitMonths, 3),
		domain.NewInterval(domain.UnitMonths, 6),
		domain.NewInterval(domain.UnitMonths, 9),
		domain.NewInterval(domain.UnitMonths, 12),
	}
}

// PresetCycles returns the built-in freeze/thaw pattern for a keyword.
// The weekly pattern thaws on the first day of each of the first three
// weeks and tests the day after the thaw, matching the other patterns.
// Unknown keywords (and "custom", which carries no pattern of its own)
// get the consecutive pattern.
func PresetCycles(t domain.FTCycleType) []domain.FTCycle {
	switch t {
	case domain.FTWeekly:
		return []domain.FTCycle{
			{Number: 1, ThawDay: 1, TestDay: 2},
			{Number: 2, ThawDay: 8, TestDay: 9},
			{Number: 3, ThawDay: 15, TestDay: 16},
		}
	case domain.FTBiweekly:
		return []domain.FTCycle{
			{Number: 1, ThawDay: 1, TestDay: 2},
			{Number: 2, ThawDay: 15, TestDay: 16},
			{Number: 3, ThawDay: 29, TestDay: 30},
		}
	default:
		return []domain.FTCycle{
			{Number: 1, ThawDay: 1, TestDay: 2},
			{Number: 2, ThawDay: 3, TestDay: 4},
			{Number: 3, ThawDay: 5, TestDay: 6},
		}
	}
}
