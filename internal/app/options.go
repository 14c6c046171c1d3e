package app

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the services in this package.
type Option func(*options)

type options struct {
	logger *zap.Logger
	now    func() time.Time
}

func defaultOptions() options {
	return options{
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger a service reports through.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces the wall clock, mainly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
