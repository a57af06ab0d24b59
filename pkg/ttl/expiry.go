// Package ttl normalizes the TTL shapes accepted by the fragment cache into a
// single Expiry value the cache backends understand.
package ttl

import (
	"time"
)

// Expiry is the canonical expiration of a cached fragment.
// It is either an absolute point in time or a duration relative to the moment
// the entry is written.
type Expiry struct {
	at       time.Time
	duration time.Duration
}

// At returns an Expiry that ends at the given instant.
func At(t time.Time) Expiry {
	return Expiry{at: t}
}

// After returns an Expiry that ends d after the entry is written.
func After(d time.Duration) Expiry {
	return Expiry{duration: d}
}

// IsAbsolute reports whether the expiry is pinned to a point in time.
func (e Expiry) IsAbsolute() bool {
	return !e.at.IsZero()
}

// IsZero reports whether the expiry carries no information at all.
func (e Expiry) IsZero() bool {
	return e.at.IsZero() && e.duration == 0
}

// Time returns the instant the entry expires when written at now.
func (e Expiry) Time(now time.Time) time.Time {
	if e.IsAbsolute() {
		return e.at
	}
	return now.Add(e.duration)
}

// TTL returns the time until expiration measured from now.
// Returns 0 if already expired.
func (e Expiry) TTL(now time.Time) time.Duration {
	if !e.IsAbsolute() {
		if e.duration < 0 {
			return 0
		}
		return e.duration
	}
	ttl := e.at.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// IsExpired returns true if the expiry has passed at now.
func (e Expiry) IsExpired(now time.Time) bool {
	return e.TTL(now) <= 0
}

// String renders the expiry for logs.
func (e Expiry) String() string {
	if e.IsAbsolute() {
		return e.at.Format(time.RFC3339)
	}
	return e.duration.String()
}
