package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Schedule is the run plan taken from the command line.
type Schedule struct {
	// Period between timer expiries, whole seconds only.
	Period time.Duration
	// Count is the number of cycles to run before exiting.
	Count int
}

// Whole-second bounds of a time.Duration. Periods outside clamp to these.
const (
	MaxPeriodSeconds = math.MaxInt64 / int64(time.Second)
	MinPeriodSeconds = math.MinInt64 / int64(time.Second)
)

// ErrUsage is returned by ParseSchedule when the argument count is wrong.
var ErrUsage = fmt.Errorf("expected exactly two arguments: <period_seconds> <iteration_count>")

// ParseSchedule builds a Schedule from the two positional arguments.
// Values are never rejected; see ParseLenientInt.
func ParseSchedule(args []string) (Schedule, error) {
	if len(args) != 2 {
		return Schedule{}, ErrUsage
	}

	return Schedule{
		Period: periodFromSeconds(int64(ParseLenientInt(args[0]))),
		Count:  ParseLenientInt(args[1]),
	}, nil
}

// ParseLenientInt reads an integer the way C atoi does: leading whitespace,
// an optional sign, then as many decimal digits as present. Input with no
// leading digits yields 0. Values outside the int range clamp.
func ParseLenientInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	// only ErrRange is possible here and Atoi then returns the clamped value
	n, _ := strconv.Atoi(s[:end])
	return n
}

func periodFromSeconds(seconds int64) time.Duration {
	seconds = min(max(seconds, MinPeriodSeconds), MaxPeriodSeconds)
	return time.Duration(seconds) * time.Second
}
