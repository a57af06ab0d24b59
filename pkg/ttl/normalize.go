package ttl

import (
	"math"
	"strings"
	"time"
)

const (
	// DefaultTTL is the configured default TTL of a fresh installation.
	DefaultTTL = "6 hours"

	// FallbackTTL is used when neither the supplied TTL nor the configured
	// default can be parsed. Caching must never break rendering, so a bad
	// TTL degrades to this value instead of failing.
	FallbackTTL = 6 * time.Hour

	// MaxTTL is the longest relative TTL. Larger integer TTLs are clamped.
	MaxTTL = time.Duration(maxSeconds) * time.Second

	maxSeconds = math.MaxInt64 / int64(time.Second)
)

// Normalizer converts heterogeneous TTL input into an Expiry.
type Normalizer struct {
	// Now is the clock used for string TTLs. Defaults to time.Now.
	Now func() time.Time
}

// Normalize converts input using the wall clock. See Normalizer.Normalize.
func Normalize(input any, defaultTTL string) Expiry {
	return Normalizer{}.Normalize(input, defaultTTL)
}

// Normalize converts input into an Expiry:
//
//   - time.Time, *time.Time and Expiry pass through as absolute expiries
//   - time.Duration passes through as a relative expiry
//   - integers are seconds from now, clamped to MaxTTL
//   - strings are human-readable durations resolved against now
//   - nil, zero values and unknown types use defaultTTL
//
// An unparsable string falls back to defaultTTL and then to FallbackTTL.
// Normalize never fails.
func (n Normalizer) Normalize(input any, defaultTTL string) Expiry {
	switch v := input.(type) {
	case Expiry:
		if !v.IsZero() {
			return v
		}
	case time.Time:
		if !v.IsZero() {
			return At(v)
		}
	case *time.Time:
		if v != nil && !v.IsZero() {
			return At(*v)
		}
	case time.Duration:
		if v > 0 {
			return After(v)
		}
	case int:
		return n.seconds(int64(v), defaultTTL)
	case int32:
		return n.seconds(int64(v), defaultTTL)
	case int64:
		return n.seconds(v, defaultTTL)
	case uint:
		return n.unsignedSeconds(uint64(v), defaultTTL)
	case uint32:
		return n.seconds(int64(v), defaultTTL)
	case uint64:
		return n.unsignedSeconds(v, defaultTTL)
	case string:
		if strings.TrimSpace(v) != "" {
			if exp, ok := n.parse(v); ok {
				return exp
			}
		}
	}

	return n.fallback(defaultTTL)
}

func (n Normalizer) seconds(s int64, defaultTTL string) Expiry {
	if s <= 0 {
		return n.fallback(defaultTTL)
	}
	if s > maxSeconds {
		return After(MaxTTL)
	}
	return After(time.Duration(s) * time.Second)
}

func (n Normalizer) unsignedSeconds(s uint64, defaultTTL string) Expiry {
	if s > uint64(maxSeconds) {
		return After(MaxTTL)
	}
	return n.seconds(int64(s), defaultTTL)
}

func (n Normalizer) fallback(defaultTTL string) Expiry {
	if exp, ok := n.parse(defaultTTL); ok {
		return exp
	}
	return At(n.now().Add(FallbackTTL))
}

func (n Normalizer) parse(s string) (Expiry, bool) {
	iv, err := ParseInterval(s)
	if err != nil || !iv.IsPositive() {
		return Expiry{}, false
	}
	return At(iv.Add(n.now())), true
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}
