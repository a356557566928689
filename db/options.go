// ABOUTME: Functional options shared by every store backend
// ABOUTME: Injects the logger and clock used for timestamps
package db

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultInteractionLimit caps interactions joined onto listed contacts.
const DefaultInteractionLimit = 5

type Option func(*options)

type options struct {
	log zerolog.Logger
	now func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		log: zerolog.Nop(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for mutation events.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithClock overrides the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = func() time.Time { return now().UTC() }
	}
}
