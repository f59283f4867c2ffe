package compare

import "go.uber.org/zap"

// Option for the comparator
type Option func(*Comparator)

// WithTipOnly sets the lookup of tip-only repositories.
//
// By default, no repository is tip-only.
func WithTipOnly(lookup TipOnlyLookup) Option {
	return func(c *Comparator) {
		if lookup != nil {
			c.tipOnly = lookup
		}
	}
}

// WithLogger sets a logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Comparator) {
		if l != nil {
			c.l = l
		}
	}
}
