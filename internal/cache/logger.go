package cache

import "github.com/rs/zerolog"

// zerologAdapter forwards cache backend errors to a zerolog logger.
type zerologAdapter struct {
	logger zerolog.Logger
	group  string
}

// NewZerologLogger returns a Logger that reports errors through logger, tagged with group.
func NewZerologLogger(logger zerolog.Logger, group string) Logger {
	return &zerologAdapter{logger: logger, group: group}
}

func (z *zerologAdapter) Error(msg string, err error) {
	z.logger.Error().Err(err).Str("cache", z.group).Msg(msg)
}
