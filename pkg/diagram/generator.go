package diagram

import (
	"time"

	"github.com/google/uuid"
)

// Generator supplies fresh identifiers and the current time. Builders and the
// normalizer take one explicitly so tests can substitute a deterministic one.
type Generator interface {
	NewID() string
	Now() time.Time
}

// DefaultGenerator issues random UUIDs and reads the wall clock.
type DefaultGenerator struct{}

// NewID returns a random UUID string.
func (DefaultGenerator) NewID() string { return uuid.NewString() }

// Now returns the current time.
func (DefaultGenerator) Now() time.Time { return time.Now() }

// timestampLayout matches JavaScript's Date.prototype.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in UTC with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
