package dice

import "go.uber.org/zap"

// loggedSource forwards to an inner Source and records every draw.
type loggedSource struct {
	inner  Source
	logger *zap.Logger
}

// NewLoggedSource wraps src so that every draw is logged at debug level.
//
// Precondition: src and logger must be non-nil.
// Postcondition: The returned Source yields exactly the values src yields.
func NewLoggedSource(src Source, logger *zap.Logger) Source {
	return &loggedSource{inner: src, logger: logger}
}

func (l *loggedSource) Intn(n int) int {
	v := l.inner.Intn(n)
	l.logger.Debug("random draw", zap.Int("n", n), zap.Int("value", v))
	return v
}
