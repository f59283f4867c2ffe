package extract

import "go.uber.org/zap"

// Option for the extractor
type Option func(*Extractor)

// WithLogger sets a logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.l = l
		}
	}
}
