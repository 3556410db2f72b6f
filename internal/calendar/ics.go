// Package calendar renders task lists as iCalendar (RFC 5545) feeds.
// The formatter is pure: given the same tasks it produces the same
// bytes, so feeds can be diffed and cached.
package calendar

import (
	"fmt"
	"strings"

	"stabtrack/stability-app/internal/domain"
)

const (
	prodID = "-//stability-app//stability tasks//EN"
	// Due dates are all-day events; DTEND is the following day per the
	// iCalendar convention of exclusive end dates.
	dateStampLayout = "20060102"
)

// BuildTaskCalendar renders the given tasks as a VCALENDAR document.
// Each task becomes one all-day VEVENT whose UID is derived from the
// task id, so re-exports update events in place instead of duplicating
// them. Lines use CRLF endings as the RFC requires.
func BuildTaskCalendar(calendarName string, tasks []domain.Task) string {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+prodID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(calendarName))

	for _, task := range tasks {
		start := task.DueDate
		end := start.AddDays(1)

		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:%s@stability-app", task.ID.Hex()))
		writeLine(&b, "DTSTAMP:"+task.CreatedAt.UTC().Format("20060102T150405Z"))
		writeLine(&b, "DTSTART;VALUE=DATE:"+compactDate(start))
		writeLine(&b, "DTEND;VALUE=DATE:"+compactDate(end))
		writeLine(&b, "SUMMARY:"+escapeText(task.Name))
		if task.Cycle != "" {
			writeLine(&b, "CATEGORIES:"+escapeText(task.Cycle))
		}
		status := "NEEDS-ACTION"
		if task.Completed {
			status = "COMPLETED"
		}
		writeLine(&b, "STATUS:"+status)
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

func compactDate(d domain.Date) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// escapeText escapes the characters RFC 5545 reserves in text values.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}

// writeLine appends a content line with CRLF, folding lines longer
// than 75 octets as the RFC requires.
func writeLine(b *strings.Builder, line string) {
	const maxLen = 75
	for len(line) > maxLen {
		b.WriteString(line[:maxLen])
		b.WriteString("\r\n ")
		line = line[maxLen:]
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}
