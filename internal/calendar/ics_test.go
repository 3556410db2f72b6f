package calendar

import (
	"strings"
	"testing"
	"time"

	"stabtrack/stability-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleTask(name string, due domain.Date, completed bool) domain.Task {
	return domain.Task{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Type:      domain.TaskWeekly,
		DueDate:   due,
		Cycle:     "Week 1",
		Completed: completed,
		CreatedAt: time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildTaskCalendarStructure(t *testing.T) {
	task := sampleTask("Stability - Serum A Week 1", domain.NewDate(2025, time.January, 8), false)
	out := BuildTaskCalendar("My Tasks", []domain.Task{task})

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"X-WR-CALNAME:My Tasks\r\n",
		"BEGIN:VEVENT\r\n",
		"UID:" + task.ID.Hex() + "@stability-app\r\n",
		"DTSTART;VALUE=DATE:20250108\r\n",
		"DTEND;VALUE=DATE:20250109\r\n",
		"SUMMARY:Stability - Serum A Week 1\r\n",
		"STATUS:NEEDS-ACTION\r\n",
		"END:VEVENT\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("calendar missing %q", want)
		}
	}
}

func TestBuildTaskCalendarCompletedStatus(t *testing.T) {
	task := sampleTask("Done task", domain.NewDate(2025, time.March, 1), true)
	out := BuildTaskCalendar("Cal", []domain.Task{task})
	if !strings.Contains(out, "STATUS:COMPLETED\r\n") {
		t.Errorf("completed task not marked COMPLETED")
	}
}

// All-day events spanning a month end must compute the exclusive end
// date with calendar arithmetic.
func TestBuildTaskCalendarMonthBoundaryEnd(t *testing.T) {
	task := sampleTask("Boundary", domain.NewDate(2025, time.January, 31), false)
	out := BuildTaskCalendar("Cal", []domain.Task{task})
	if !strings.Contains(out, "DTEND;VALUE=DATE:20250201\r\n") {
		t.Errorf("end date did not roll into February")
	}
}

func TestEscapeText(t *testing.T) {
	in := "a;b,c\nd\\e"
	want := `a\;b\,c\nd\\e`
	if got := escapeText(in); got != want {
		t.Errorf("escape %q = %q, want %q", in, got, want)
	}
}

func TestBuildTaskCalendarDeterministic(t *testing.T) {
	tasks := []domain.Task{
		sampleTask("A", domain.NewDate(2025, time.February, 3), false),
		sampleTask("B", domain.NewDate(2025, time.February, 10), true),
	}
	if BuildTaskCalendar("Cal", tasks) != BuildTaskCalendar("Cal", tasks) {
		t.Fatal("same input produced different calendars")
	}
}

func TestLongSummaryIsFolded(t *testing.T) {
	task := sampleTask("Stability - "+strings.Repeat("VeryLongProductName", 10)+" Week 1", domain.NewDate(2025, time.May, 5), false)
	out := BuildTaskCalendar("Cal", []domain.Task{task})
	for _, line := range strings.Split(out, "\r\n") {
		if len(line) > 76 { // 75 octets plus the folding space
			t.Errorf("unfolded line of %d octets: %q", len(line), line)
		}
	}
}
