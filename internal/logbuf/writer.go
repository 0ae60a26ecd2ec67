package logbuf

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Writer returns a zerolog.LevelWriter that records WARN and more severe
// log lines in the store. Lines are expected in zerolog's JSON form.
func (s *Store) Writer() zerolog.LevelWriter {
	return &storeWriter{store: s, min: zerolog.WarnLevel}
}

// WriterAt is like Writer but records lines at min or above. Debug and trace
// lines are never recorded.
func (s *Store) WriterAt(min zerolog.Level) zerolog.LevelWriter {
	if min < zerolog.InfoLevel {
		min = zerolog.InfoLevel
	}
	return &storeWriter{store: s, min: min}
}

type storeWriter struct {
	store *Store
	min   zerolog.Level
}

// Write handles lines that arrive without a level, for example through a
// plain io.Writer adapter. The level is read from the line itself.
func (w *storeWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (w *storeWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var fields map[string]any
	if err := json.Unmarshal(p, &fields); err != nil {
		// Not a JSON line; keep it as an opaque message.
		if level >= w.min && level < zerolog.NoLevel {
			w.store.Add(levelFromZerolog(level), string(p), nil)
		}
		return len(p), nil
	}

	if level == zerolog.NoLevel {
		if s, ok := fields[zerolog.LevelFieldName].(string); ok {
			if parsed, err := zerolog.ParseLevel(s); err == nil {
				level = parsed
			}
		}
	}
	if level < w.min || level >= zerolog.NoLevel {
		return len(p), nil
	}

	e := Entry{Level: levelFromZerolog(level)}
	if msg, ok := fields[zerolog.MessageFieldName].(string); ok {
		e.Message = msg
	}
	if ts, ok := fields[zerolog.TimestampFieldName].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		}
	}
	delete(fields, zerolog.LevelFieldName)
	delete(fields, zerolog.MessageFieldName)
	delete(fields, zerolog.TimestampFieldName)
	if len(fields) > 0 {
		e.Details = fields
	}

	w.store.Append(e)
	return len(p), nil
}

func levelFromZerolog(l zerolog.Level) Level {
	switch {
	case l >= zerolog.ErrorLevel:
		return LevelError
	case l == zerolog.WarnLevel:
		return LevelWarn
	default:
		return LevelInfo
	}
}
