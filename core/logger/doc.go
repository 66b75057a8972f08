// Package logger records the shell's structured event log.
//
// Each entry is a protobuf Struct written as a single line of JSON holding
// the timestamp, an optional session ID, the event name and the event's
// fields nested under the event name.
package logger
