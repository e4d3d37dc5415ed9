package parser

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// ErrNoDate is returned when neither date strategy matches the line.
var ErrNoDate = errors.New("no arrival date recognized")

const instantPattern = `(\d{1,2})\s+(\p{L}+)\.?\s+(\d{4}),\s*(\d{1,2}):(\d{2})`

var (
	dualInstantRe   = regexp.MustCompile(instantPattern + `\s*[–-]\s*` + instantPattern)
	singleInstantRe = regexp.MustCompile(instantPattern)
)

// Span is the arrival instant and, when the line carries it, the departure instant.
type Span struct {
	Arrival   time.Time
	Departure *time.Time
}

const (
	strategyDual   = "dual timestamp"
	strategySingle = "single timestamp"
)

func spanRules(loc *time.Location) []rule[Span] {
	return []rule[Span]{
		{name: strategyDual, apply: func(line string) (Span, bool) {
			m := dualInstantRe.FindStringSubmatch(line)
			if m == nil {
				return Span{}, false
			}
			arrival, ok := buildInstant(m[1:6], loc)
			if !ok {
				return Span{}, false
			}
			departure, ok := buildInstant(m[6:11], loc)
			if !ok {
				return Span{}, false
			}
			return Span{Arrival: arrival, Departure: &departure}, true
		}},
		{name: strategySingle, apply: func(line string) (Span, bool) {
			m := singleInstantRe.FindStringSubmatch(line)
			if m == nil {
				return Span{}, false
			}
			arrival, ok := buildInstant(m[1:6], loc)
			if !ok {
				return Span{}, false
			}
			return Span{Arrival: arrival}, true
		}},
	}
}

// ExtractSpan locates the arrival and optional departure instants on a line.
// Day and clock values are taken literally; out-of-range values normalize the
// way time.Date does.
func ExtractSpan(line string, loc *time.Location) (Span, string, error) {
	if loc == nil {
		loc = time.Local
	}
	span, strategy, ok := firstMatch(spanRules(loc), line)
	if !ok {
		return Span{}, "", ErrNoDate
	}
	return span, strategy, nil
}

// buildInstant expects day, month name, year, hour, minute.
func buildInstant(parts []string, loc *time.Location) (time.Time, bool) {
	month, ok := ResolveMonth(parts[1])
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(parts[0])
	year, _ := strconv.Atoi(parts[2])
	hour, _ := strconv.Atoi(parts[3])
	minute, _ := strconv.Atoi(parts[4])
	return time.Date(year, time.Month(month+1), day, hour, minute, 0, 0, loc), true
}
