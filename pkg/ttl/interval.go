package ttl

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidInterval is returned when a duration string cannot be parsed.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a parsed human-readable duration such as "6 hours" or
// "1 day 2 hours". Calendar units are kept separate from clock time so that
// adding "1 month" follows the calendar rather than a fixed 30 days.
type Interval struct {
	Years  int
	Months int
	Days   int
	Clock  time.Duration
}

// Add returns t advanced by the interval.
func (i Interval) Add(t time.Time) time.Time {
	if i.Years != 0 || i.Months != 0 || i.Days != 0 {
		t = t.AddDate(i.Years, i.Months, i.Days)
	}
	return t.Add(i.Clock)
}

// IsPositive reports whether adding the interval moves time forward.
func (i Interval) IsPositive() bool {
	ref := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	return i.Add(ref).After(ref)
}

var clockUnits = map[string]time.Duration{
	"ms":           time.Millisecond,
	"msec":         time.Millisecond,
	"millisecond":  time.Millisecond,
	"milliseconds": time.Millisecond,
	"s":            time.Second,
	"sec":          time.Second,
	"secs":         time.Second,
	"second":       time.Second,
	"seconds":      time.Second,
	"m":            time.Minute,
	"min":          time.Minute,
	"mins":         time.Minute,
	"minute":       time.Minute,
	"minutes":      time.Minute,
	"h":            time.Hour,
	"hr":           time.Hour,
	"hrs":          time.Hour,
	"hour":         time.Hour,
	"hours":        time.Hour,
}

// ParseInterval parses strings like "6 hours", "10 minutes", "+1 day 30 mins",
// "2 weeks, 3 days" as well as Go duration syntax ("90m", "1h30m").
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Interval{}, fmt.Errorf("%w: empty string", ErrInvalidInterval)
	}

	if d, err := time.ParseDuration(s); err == nil {
		return Interval{Clock: d}, nil
	}

	tokens := tokenize(strings.TrimPrefix(s, "+"))
	if len(tokens) == 0 {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}

	var iv Interval
	for i := 0; i < len(tokens); i++ {
		if tokens[i] == "and" {
			continue
		}

		n, err := strconv.Atoi(tokens[i])
		if err != nil {
			return Interval{}, fmt.Errorf("%w: expected number, got %q", ErrInvalidInterval, tokens[i])
		}
		if i+1 >= len(tokens) {
			return Interval{}, fmt.Errorf("%w: missing unit after %d", ErrInvalidInterval, n)
		}
		i++
		if err := iv.addUnit(n, tokens[i]); err != nil {
			return Interval{}, err
		}
	}

	return iv, nil
}

func (i *Interval) addUnit(n int, unit string) error {
	if d, ok := clockUnits[unit]; ok {
		limit := int64(math.MaxInt64 / d)
		if int64(n) > limit || int64(n) < -limit {
			return fmt.Errorf("%w: %d %s out of range", ErrInvalidInterval, n, unit)
		}
		add := time.Duration(n) * d
		sum := i.Clock + add
		if (add > 0 && sum < i.Clock) || (add < 0 && sum > i.Clock) {
			return fmt.Errorf("%w: %d %s out of range", ErrInvalidInterval, n, unit)
		}
		i.Clock = sum
		return nil
	}

	switch unit {
	case "d", "day", "days":
		i.Days += n
	case "w", "week", "weeks":
		i.Days += 7 * n
	case "fortnight", "fortnights":
		i.Days += 14 * n
	case "month", "months":
		i.Months += n
	case "y", "year", "years":
		i.Years += n
	default:
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidInterval, unit)
	}
	return nil
}

// tokenize splits "10minutes, 2 hours" into ["10", "minutes", "2", "hours"].
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	var curDigit bool

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == ',':
			flush()
		case unicode.IsDigit(r) || (r == '-' && cur.Len() == 0):
			if cur.Len() > 0 && !curDigit {
				flush()
			}
			curDigit = true
			cur.WriteRune(r)
		default:
			if cur.Len() > 0 && curDigit {
				flush()
			}
			curDigit = false
			cur.WriteRune(r)
		}
	}
	flush()

	return tokens
}
