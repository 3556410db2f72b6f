// Package schedule expands a product's start date and schedule
// configuration into the concrete list of dated tasks to persist. The
// functions here are pure: no I/O, no clock, no state. They run exactly
// once, at product creation, and their output is never reconciled
// against existing tasks afterwards, so identical inputs must produce
// identical output, field for field.
package schedule

import (
	"fmt"
	"sort"

	"stabtrack/stability-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Config is the resolved schedule configuration for one product. The
// caller (the product service) resolves template references into
// concrete interval/cycle lists before handing it over; the generator
// itself never touches storage.
type Config struct {
	// Intervals for periodic tests. Nil means "no template referenced":
	// the built-in default schedule applies. An explicit empty slice
	// means a template with no checkpoints and yields no periodic tasks.
	Intervals []domain.ScheduleInterval

	// CycleType selects a built-in freeze/thaw pattern. Ignored when
	// Cycles is non-nil.
	CycleType domain.FTCycleType

	// Cycles is an explicit freeze/thaw list, from a cycle template or
	// the product's custom configuration. Takes precedence over
	// CycleType. An empty (but non-nil) list falls back to the
	// consecutive pattern rather than generating no F/T tasks.
	Cycles []domain.FTCycle
}

// GeneratePeriodicTasks expands the interval list into one periodic
// stability-test task per checkpoint, sorted by offset for stable
// display order. The zero-offset checkpoint reuses the start date
// verbatim, never through an arithmetic round trip.
func GeneratePeriodicTasks(productID primitive.ObjectID, productName string, start domain.Date, intervals []domain.ScheduleInterval) []domain.Task {
	sorted := make([]domain.ScheduleInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OffsetDays < sorted[j].OffsetDays
	})

	tasks := make([]domain.Task, 0, len(sorted))
	for _, iv := range sorted {
		due := start
		if iv.OffsetDays > 0 {
			due = start.AddDays(iv.OffsetDays)
		}
		label := iv.Label()
		tasks = append(tasks, domain.Task{
			ProductID: productID,
			Name:      fmt.Sprintf("Stability - %s %s", productName, label),
			Type:      domain.TaskWeekly,
			DueDate:   due,
			Cycle:     label,
		})
	}
	return tasks
}

// GenerateFTTasks emits a thaw task and a test task for every
// freeze/thaw cycle. Cycles are assumed validated (test strictly after
// thaw); both tasks of a pair share the "Cycle {n}" label.
func GenerateFTTasks(productID primitive.ObjectID, productName string, start domain.Date, cycles []domain.FTCycle) []domain.Task {
	tasks := make([]domain.Task, 0, 2*len(cycles))
	for _, c := range cycles {
		label := fmt.Sprintf("Cycle %d", c.Number)
		tasks = append(tasks,
			domain.Task{
				ProductID: productID,
				Name:      fmt.Sprintf("F/T Thaw - %s %s", productName, label),
				Type:      domain.TaskFTThaw,
				DueDate:   start.AddDays(c.ThawDay),
				Cycle:     label,
			},
			domain.Task{
				ProductID: productID,
				Name:      fmt.Sprintf("F/T Test - %s %s", productName, label),
				Type:      domain.TaskFTTest,
				DueDate:   start.AddDays(c.TestDay),
				Cycle:     label,
			},
		)
	}
	return tasks
}

// GenerateStabilityTasks is the single entry point collaborators call.
// It resolves the effective interval and cycle lists from cfg, expands
// both, and returns the full batch for the product: periodic tasks
// first, then the freeze/thaw pairs in cycle order.
func GenerateStabilityTasks(productID primitive.ObjectID, productName string, start domain.Date, cfg Config) []domain.Task {
	intervals := cfg.Intervals
	if intervals == nil {
		intervals = DefaultIntervals()
	}

	cycles := cfg.Cycles
	if len(cycles) == 0 {
		cycles = PresetCycles(cfg.CycleType)
	}

	tasks := GeneratePeriodicTasks(productID, productName, start, intervals)
	return append(tasks, GenerateFTTasks(productID, productName, start, cycles)...)
}
