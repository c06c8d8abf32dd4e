// Package dateparse turns the due-date phrases found in meeting transcripts
// ("by Friday", "tomorrow", "in 2 weeks", "2025-03-14") into calendar dates.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	fillerPrefix = regexp.MustCompile(`^(by|before|on|due|until|till|no later than)\s+`)
	inDuration   = regexp.MustCompile(`^in\s+(\d+|a|an|one|two|three|four|five|six|seven)\s+(day|days|week|weeks|month|months)$`)
	weekdays     = map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
		"saturday": time.Saturday,

		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "tues": time.Tuesday,
		"wed": time.Wednesday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
		"fri": time.Friday, "sat": time.Saturday,
	}
	smallNumbers = map[string]int{"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7}
	nullish      = map[string]struct{}{"": {}, "null": {}, "none": {}, "n/a": {}, "na": {}, "tbd": {}, "unknown": {}, "no due date": {}}
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// DateLayout is the ISO calendar date format
const DateLayout = "2006-01-02"

// ParseDueDate resolves raw relative to ref and returns the day as UTC
// midnight. ok is false when raw is empty or cannot be understood.
func ParseDueDate(raw string, ref time.Time) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimRight(s, ".!")
	if _, skip := nullish[s]; skip {
		return time.Time{}, false
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
		return truncateDay(t), true
	}

	if t, ok := parseRelative(s, ref); ok {
		return t, true
	}

	r, err := parser.Parse(raw, ref)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return truncateDay(r.Time), true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseRelative covers the phrases meetings use most, with meeting semantics:
// a bare weekday is its next occurrence after ref, and the end of the week
// is Friday.
func parseRelative(s string, ref time.Time) (time.Time, bool) {
	s = fillerPrefix.ReplaceAllString(s, "")
	day := truncateDay(ref)

	switch s {
	case "today", "eod", "end of day", "end of today":
		return day, true
	case "tomorrow":
		return day.AddDate(0, 0, 1), true
	case "day after tomorrow":
		return day.AddDate(0, 0, 2), true
	case "next week":
		return day.AddDate(0, 0, 7), true
	case "end of week", "end of the week", "eow", "this week":
		return nextWeekday(day, time.Friday, true), true
	case "end of month", "end of the month", "eom", "this month":
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, 1, -1), true
	}

	if m := inDuration.FindStringSubmatch(s); m != nil {
		n, ok := smallNumbers[m[1]]
		if !ok {
			n, _ = strconv.Atoi(m[1])
		}
		switch strings.TrimSuffix(m[2], "s") {
		case "day":
			return day.AddDate(0, 0, n), true
		case "week":
			return day.AddDate(0, 0, 7*n), true
		case "month":
			return day.AddDate(0, n, 0), true
		}
	}

	s = strings.TrimPrefix(strings.TrimPrefix(s, "next "), "this ")
	if wd, ok := weekdays[s]; ok {
		return nextWeekday(day, wd, false), true
	}

	return time.Time{}, false
}

// nextWeekday returns the first wd strictly after day, or day itself when
// allowSame is set and day already is wd.
func nextWeekday(day time.Time, wd time.Weekday, allowSame bool) time.Time {
	delta := (int(wd) - int(day.Weekday()) + 7) % 7
	if delta == 0 && !allowSame {
		delta = 7
	}
	return day.AddDate(0, 0, delta)
}
