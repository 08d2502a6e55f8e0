package grpc

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// interceptorLogger adapts a zerolog logger to the middleware logging interface.
func interceptorLogger(l zerolog.Logger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, fields ...any) {
		l := l.With().Fields(fields).Logger()
		switch lvl {
		case logging.LevelDebug:
			l.Debug().Msg(msg)
		case logging.LevelInfo:
			l.Info().Msg(msg)
		case logging.LevelWarn:
			l.Warn().Msg(msg)
		case logging.LevelError:
			l.Error().Msg(msg)
		default:
			l.Warn().Int("level", int(lvl)).Msg(msg)
		}
	})
}

// recoveryHandler turns a handler panic into an Internal status and logs it.
func recoveryHandler(l zerolog.Logger) recovery.RecoveryHandlerFunc {
	return func(p any) error {
		l.Error().Str("panic", fmt.Sprint(p)).Msg("Recovered from panic in gRPC handler")
		return status.Errorf(codes.Internal, "internal error")
	}
}
