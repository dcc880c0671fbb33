// Package logging writes structured one-line JSON logs.
package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

type Fields map[string]interface{}

var (
	logger = log.New(os.Stderr, "", 0)
	debug  atomic.Bool
)

func init() {
	debug.Store(os.Getenv("ARENA_DEBUG") == "1")
}

// SetOutput redirects log lines to w.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetDebug turns debug lines on or off. ARENA_DEBUG=1 turns them on at start.
func SetDebug(on bool) {
	debug.Store(on)
}

func output(level, msg string, fields Fields) {
	line := make(Fields, len(fields)+3)
	for k, v := range fields {
		line[k] = v
	}
	line["level"] = level
	line["ts"] = time.Now().UTC().Format(time.RFC3339)
	line["msg"] = msg
	b, err := json.Marshal(line)
	if err != nil {
		// fallback to plain logging
		logger.Printf("%s: %s (%v)\n", level, msg, fields)
		return
	}
	logger.Println(string(b))
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	output("info", msg, fields)
}

// Debug logs only when debug output is enabled.
func Debug(msg string, fields Fields) {
	if !debug.Load() {
		return
	}
	output("debug", msg, fields)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	output("error", msg, withError(fields, err))
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	output("fatal", msg, withError(fields, err))
	os.Exit(1)
}

func withError(fields Fields, err error) Fields {
	if err == nil {
		return fields
	}
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
