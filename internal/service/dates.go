package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	weekdayPrefix = regexp.MustCompile(`(?i)^(?:this\s+|next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun)\b\.?,?\s*`)
	timeSuffix    = regexp.MustCompile(`(?i)(?:\s+|\s*,\s*)(?:at\s*|@\s*)\d{1,2}(?::\d{2})?\s*(?:am|pm|a\.m\.?|p\.m\.?)?$`)
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

var datedLayouts = []string{
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// yearless layouts resolve in the current year
var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
	"2 January",
	"2 Jan",
	"1/2",
	"01/02",
}

// DateResolver turns free-text stay descriptions into calendar dates in a reference timezone
type DateResolver struct {
	loc *time.Location
	now func() time.Time
}

// NewDateResolver creates a resolver; now defaults to time.Now
func NewDateResolver(loc *time.Location, now func() time.Time) *DateResolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DateResolver{loc: loc, now: now}
}

// Today returns the current date at midnight in the reference timezone
func (r *DateResolver) Today() time.Time {
	y, m, d := r.now().In(r.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc)
}

// Resolve applies, in order: "next weekend", both texts parsed, check-in plus nights,
// nights alone from the next Friday. ok is false when no rule applies.
// nights < 1 counts as absent.
func (r *DateResolver) Resolve(checkInText, checkOutText string, nights int) (checkIn, checkOut time.Time, ok bool) {
	today := r.Today()

	if strings.Contains(strings.ToLower(checkInText), "next weekend") {
		checkIn = nextWeekday(today, time.Saturday)
		stay := nights
		if stay < 1 {
			stay = 1
		}
		return checkIn, addDays(checkIn, stay), true
	}

	in, inOK := r.Parse(checkInText)
	out, outOK := r.Parse(checkOutText)
	switch {
	case inOK && outOK:
		return in, out, true
	case inOK && nights >= 1:
		return in, addDays(in, nights), true
	case nights >= 1:
		checkIn = nextWeekday(today, time.Friday)
		return checkIn, addDays(checkIn, nights), true
	}
	return time.Time{}, time.Time{}, false
}

// Parse reads one free-form date expression. "today" and "tomorrow" are relative to the reference day.
// A leading weekday name and a trailing "at <time>" are ignored; a weekday name alone means
// that day this week, or next week once it has passed.
func (r *DateResolver) Parse(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	cleaned := strings.TrimSpace(strings.TrimSuffix(text, "."))
	cleaned = timeSuffix.ReplaceAllString(cleaned, "")

	switch strings.ToLower(cleaned) {
	case "today", "tonight":
		return r.Today(), true
	case "tomorrow":
		return addDays(r.Today(), 1), true
	}
	if m := weekdayPrefix.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(cleaned[len(m[0]):])
		if cleaned == "" {
			return weekdayOnOrAfter(r.Today(), weekdays[strings.ToLower(m[1])[:3]]), true
		}
	}
	cleaned = ordinalSuffix.ReplaceAllString(cleaned, "$1")
	cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "."))

	dated := strings.Join(strings.Fields(strings.ReplaceAll(cleaned, ",", " ")), " ")
	for _, layout := range datedLayouts {
		if t, err := time.ParseInLocation(layout, dated, r.loc); err == nil {
			return t, true
		}
	}

	year := r.Today().Year()
	for _, layout := range yearlessLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, r.loc); err == nil {
			return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, r.loc), true
		}
	}

	t, err := dateparse.ParseIn(cleaned, r.loc)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	if y < 1900 {
		y = year
	}
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc), true
}

// weekdayOnOrAfter returns from itself when it falls on wd, else the next wd
func weekdayOnOrAfter(from time.Time, wd time.Weekday) time.Time {
	if from.Weekday() == wd {
		return from
	}
	return nextWeekday(from, wd)
}

// nextWeekday returns the first day strictly after from that falls on wd
func nextWeekday(from time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return addDays(from, days)
}

// addDays moves by calendar days, so DST changes never shift the date
func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}
