package logger

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDField = "request_id"

type key int

// KeyRequestID is the Request ID in the Context.
const KeyRequestID key = 0

// New builds the process logger. format is "json" or "console".
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), err
		}
		lvl = parsed
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Caller().Logger(), nil
}

// ContextWithRequestID returns a Context carrying a request scoped logger
// derived from base. An id that is not a UUID is replaced by a fresh one.
func ContextWithRequestID(ctx context.Context, base zerolog.Logger, id string) context.Context {
	if parsed, err := uuid.Parse(id); err == nil {
		id = parsed.String()
	} else {
		id = uuid.NewString()
	}

	ctx = context.WithValue(ctx, KeyRequestID, id)
	l := base.With().Str(requestIDField, id).Logger()
	return l.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)
	return id
}
