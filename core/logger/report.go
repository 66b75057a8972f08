package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/josephlewis42/keyshell/core/shell"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventLogin is recorded when a user logs in over SSH.
const EventLogin = "login"

// LogEntry is a decoded event log line.
type LogEntry struct {
	TimestampMicros int64
	SessionID       string
	Event           string
	Fields          map[string]interface{}
}

// String returns a field as a string, or "" if it's missing.
func (le *LogEntry) String(field string) string {
	v, ok := le.Fields[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func decodeEntry(s *structpb.Struct) *LogEntry {
	le := &LogEntry{
		TimestampMicros: int64(s.GetFields()[FieldTimestamp].GetNumberValue()),
		SessionID:       s.GetFields()[FieldSessionID].GetStringValue(),
		Event:           s.GetFields()[FieldEvent].GetStringValue(),
	}
	if payload := s.GetFields()[le.Event].GetStructValue(); payload != nil {
		le.Fields = payload.AsMap()
	}
	return le
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var rawEntry json.RawMessage
		if err := decoder.Decode(&rawEntry); err != nil {
			return err
		}

		var entry structpb.Struct
		if err := protojson.Unmarshal(rawEntry, &entry); err != nil {
			return err
		}

		handler(decodeEntry(&entry))
	}
	return nil
}

func NewBugReport() *BugReport {
	return &BugReport{
		Violations: NewPathCounter("command", "error"),
		Failures:   NewPathCounter("line", "error_kind", "error"),
	}
}

// BugReport pulls events that are likely bugs in commands or scripts.
type BugReport struct {
	LogEntries int `json:"log_entries"`

	Violations *PathCounter `json:"violations"`
	Failures   *PathCounter `json:"failures"`
	Panics     []string     `json:"panics"`
}

func (r *BugReport) Update(le *LogEntry) {
	r.LogEntries++

	switch le.Event {
	case shell.EventPanic:
		r.Panics = append(r.Panics, fmt.Sprintf("%s: %s", le.String("command"), le.String("context")))
	case shell.EventViolation:
		r.Violations.Increment(le.String("command"), le.String("error"))
	case shell.EventDispatch:
		if kind := le.String("error_kind"); kind == "execution" || kind == "parse" {
			r.Failures.Increment(le.String("line"), kind, le.String("error"))
		}
	}
}

// InteractionReport groups the typed lines by session.
type InteractionReport struct {
	// Map of sessionID -> interactions
	interactions map[string]*InteractiveSession
}

type InteractiveSession struct {
	Username   string   `json:"username,omitempty"`
	RemoteAddr string   `json:"remote_addr,omitempty"`
	LogEntries int      `json:"log_entries"`
	Lines      []string `json:"lines"`
	Errors     int      `json:"errors"`
}

func (i *InteractiveSession) Update(le *LogEntry) {
	i.LogEntries++

	switch le.Event {
	case EventLogin:
		i.Username = le.String("username")
		i.RemoteAddr = le.String("remote_addr")
	case shell.EventDispatch:
		i.Lines = append(i.Lines, le.String("line"))
		if le.String("error_kind") != "" && le.String("error_kind") != "exit" {
			i.Errors++
		}
	}
}

func (i *InteractionReport) init() {
	if i.interactions == nil {
		i.interactions = make(map[string]*InteractiveSession)
	}
}

// MarshalJSON implements custom JSON marshaler.
func (i *InteractionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.interactions)
}

func (i *InteractionReport) Update(le *LogEntry) {
	i.init()

	if le.SessionID == "" {
		return
	}
	report, ok := i.interactions[le.SessionID]
	if !ok {
		report = &InteractiveSession{}
		i.interactions[le.SessionID] = report
	}

	report.Update(le)
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Login     LoginReport     `json:"login_report"`
	Dispatch  DispatchReport  `json:"dispatch_report"`
	Command   CommandReport   `json:"command_report"`
	Violation ViolationReport `json:"violation_report"`
	Panic     PanicReport     `json:"panic_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch le.Event {
	case EventLogin:
		r.Login.update(le)
	case shell.EventDispatch:
		r.Dispatch.update(le)
	case shell.EventCommand:
		r.Command.update(le)
	case shell.EventViolation:
		r.Violation.update(le)
	case shell.EventPanic:
		r.Panic.update(le)
	default:
		r.InvalidEntries.Increment(le.Event)
	}
}

type LoginReport struct {
	Usernames StrCounter `json:"usernames"`
	Results   StrCounter `json:"results"`
}

func (r *LoginReport) update(le *LogEntry) {
	r.Usernames.Increment(le.String("username"))
	r.Results.Increment(le.String("result"))
}

type DispatchReport struct {
	// Final dispatcher states and their counts.
	States StrCounter `json:"states"`
	// Error kinds of aborted lines.
	ErrorKinds StrCounter `json:"error_kinds"`
}

func (r *DispatchReport) update(le *LogEntry) {
	r.States.Increment(le.String("state"))
	if kind := le.String("error_kind"); kind != "" {
		r.ErrorKinds.Increment(kind)
	}
}

type CommandReport struct {
	CommandNames StrCounter `json:"command_names"`
	ExitCodes    StrCounter `json:"exit_codes"`
}

func (r *CommandReport) update(le *LogEntry) {
	r.CommandNames.Increment(le.String("command"))
	r.ExitCodes.Increment(le.String("exit_code"))
}

type ViolationReport struct {
	CommandNames StrCounter `json:"command_counts"`
}

func (r *ViolationReport) update(le *LogEntry) {
	r.CommandNames.Increment(le.String("command"))
}

type PanicReport struct {
	Contexts []string `json:"contexts"`
}

func (r *PanicReport) update(le *LogEntry) {
	r.Contexts = append(r.Contexts, le.String("context"))
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the number of times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count returns the number of times the tuple was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
