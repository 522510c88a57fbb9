// Package timeparsing resolves the values accepted by
// `sk jira query --updated-since`.
//
// ParseRelativeTime tries, in order: a compact offset (-3d, -12h, -2w), a
// date (2025-01-31, midnight in the reference location), an RFC3339
// timestamp, and English phrases (yesterday, 3 days ago, last monday).
// ParseSince adds the rules specific to --updated-since on top.
package timeparsing

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	// ErrUnrecognized is returned when no form matches an expression.
	ErrUnrecognized = errors.New("unrecognized time expression")

	// ErrFuture is returned by ParseSince for values after the reference time.
	ErrFuture = errors.New("time is in the future")
)

// offsetRe matches a compact offset: optional sign, count, unit.
var offsetRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

var nlp = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseCompactDuration applies a compact offset such as "-3d" to now.
// Units are h (hours), d (days), w (weeks), m (calendar months) and
// y (calendar years). An unsigned offset moves forward.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a compact offset: %q", s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("offset %q: %w", s, err)
	}
	if m[1] == "-" {
		n = -n
	}

	switch m[3] {
	case "h":
		return now.Add(time.Duration(n) * time.Hour), nil
	case "d":
		return now.AddDate(0, 0, n), nil
	case "w":
		return now.AddDate(0, 0, 7*n), nil
	case "m":
		return now.AddDate(0, n, 0), nil
	default:
		return now.AddDate(n, 0, 0), nil
	}
}

// ParseNaturalLanguage resolves an English phrase relative to now.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnrecognized)
	}
	r, err := nlp.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, s)
	}
	return r.Time, nil
}

// ParseRelativeTime returns the time the first matching form yields.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := ParseCompactDuration(s, now); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := ParseNaturalLanguage(s, now); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q (try -3d, 2025-01-31, or \"last monday\")", ErrUnrecognized, s)
}

// ParseSince resolves an --updated-since value. An unsigned compact offset
// counts back from now, so "3d" and "-3d" agree. Values after now fail with
// ErrFuture.
func ParseSince(s string, now time.Time) (time.Time, error) {
	expr := strings.TrimSpace(s)
	if m := offsetRe.FindStringSubmatch(expr); m != nil && m[1] == "" {
		expr = "-" + expr
	}
	t, err := ParseRelativeTime(expr, now)
	if err != nil {
		return time.Time{}, err
	}
	if t.After(now) {
		return time.Time{}, fmt.Errorf("%w: %q resolves to %s", ErrFuture, s, t.Format(time.RFC3339))
	}
	return t, nil
}
