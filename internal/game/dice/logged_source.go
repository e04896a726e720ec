package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level, so a full
// roll-by-roll audit trail of a simulation run can be reconstructed.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource drawing from src and logging to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped Source and logs the value.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("die roll",
		zap.Int("sides", n),
		zap.Int("value", v+1),
	)
	return v
}

// Float64 draws from the wrapped Source and logs the value.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.logger.Debug("proc roll",
		zap.Float64("value", v),
	)
	return v
}
