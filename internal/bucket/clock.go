package bucket

import (
	"errors"
	"time"
)

// Clock maps instants to the fixed-size time bucket they fall into.
type Clock struct {
	size time.Duration
}

// NewClock creates a Clock with the given bucket size (e.g. time.Hour
// for hourly buckets, 24*time.Hour for daily).
func NewClock(size time.Duration) (*Clock, error) {
	if size <= 0 {
		return nil, errors.New("bucket size must be positive")
	}
	return &Clock{size: size}, nil
}

// Size returns the bucket duration.
func (c *Clock) Size() time.Duration { return c.size }

// KeyFor returns the start of the bucket containing t. Buckets are
// aligned to UTC, so hourly buckets start on the hour and daily buckets
// at UTC midnight.
func (c *Clock) KeyFor(t time.Time) time.Time {
	return t.UTC().Truncate(c.size)
}

// HasCrossed reports whether a bucket boundary lies between prev and cur.
func (c *Clock) HasCrossed(prev, cur time.Time) bool {
	return !c.KeyFor(prev).Equal(c.KeyFor(cur))
}

// Completed returns the bucket that just finished when a crossing was
// detected: the bucket of the previous tick, never the current one.
// A pause spanning several buckets still yields a single completed
// bucket; the skipped intervals are not reconstructed.
func (c *Clock) Completed(prev time.Time) time.Time {
	return c.KeyFor(prev)
}
