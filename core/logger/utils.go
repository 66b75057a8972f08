package logger

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Top level fields of every log entry.
const (
	FieldTimestamp = "timestamp_micros"
	FieldSessionID = "session_id"
	FieldEvent     = "event"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *structpb.Struct) error

// Logger captures the shell's event log.
type Logger struct {
	Record LogRecorder

	now func() time.Time
}

// NewJSONLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJSONLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex
	return &Logger{
		Record: func(le *structpb.Struct) error {
			entry, err := protojson.Marshal(le)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// Discard creates a Logger that drops all events.
func Discard() *Logger {
	return &Logger{Record: func(*structpb.Struct) error { return nil }}
}

func (l *Logger) timestamp() int64 {
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	return now().UnixNano() / int64(time.Microsecond)
}

func (l *Logger) recordEvent(sessionID, event string, fields map[string]interface{}) error {
	payload, err := toStructValue(fields)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event, err)
	}

	le := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldTimestamp: structpb.NewNumberValue(float64(l.timestamp())),
		FieldEvent:     structpb.NewStringValue(event),
		event:          payload,
	}}
	if sessionID != "" {
		le.Fields[FieldSessionID] = structpb.NewStringValue(sessionID)
	}

	return l.Record(le)
}

// toStructValue converts fields to a protobuf value, slices of strings are
// converted to lists.
func toStructValue(fields map[string]interface{}) (*structpb.Value, error) {
	converted := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch typed := v.(type) {
		case []string:
			list := make([]interface{}, len(typed))
			for i, s := range typed {
				list[i] = s
			}
			converted[k] = list
		case fmt.Stringer:
			converted[k] = typed.String()
		default:
			converted[k] = v
		}
	}

	s, err := structpb.NewStruct(converted)
	if err != nil {
		return nil, err
	}
	return structpb.NewStructValue(s), nil
}

// NewSession creates a logger with a new random session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: uuid.NewString()}
}

// Sessionless creates a logger without a session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ""}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID returns the ID attached to every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record writes an event with the given fields.
func (l *SessionLogger) Record(event string, fields map[string]interface{}) error {
	return l.recordEvent(l.sessionID, event, fields)
}
