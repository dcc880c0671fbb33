package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetDebug(false)
	})
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("line %q is not JSON: %v", raw, err)
		}
		lines = append(lines, m)
	}
	return lines
}

func TestInfoWritesJSONLine(t *testing.T) {
	buf := capture(t)

	fields := Fields{"battle_id": "b1", "turns": 7}
	Info("battle finished", fields)

	lines := decode(t, buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line["level"] != "info" || line["msg"] != "battle finished" || line["battle_id"] != "b1" {
		t.Errorf("unexpected line %v", line)
	}
	if line["turns"] != float64(7) {
		t.Errorf("Expected turns 7, got %v", line["turns"])
	}
	if _, err := time.Parse(time.RFC3339, line["ts"].(string)); err != nil {
		t.Errorf("ts is not RFC3339: %v", err)
	}
	if _, ok := fields["level"]; ok {
		t.Error("Caller's fields must not be modified")
	}
}

func TestErrorIncludesErrorText(t *testing.T) {
	buf := capture(t)

	Error("reward apply failed", errors.New("ledger closed"), nil)

	lines := decode(t, buf)
	if len(lines) != 1 || lines[0]["level"] != "error" || lines[0]["error"] != "ledger closed" {
		t.Errorf("unexpected lines %v", lines)
	}
}

func TestDebugGated(t *testing.T) {
	buf := capture(t)

	SetDebug(false)
	Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Errorf("Expected no output with debug off, got %q", buf.String())
	}

	SetDebug(true)
	Debug("shown", Fields{"k": "v"})
	lines := decode(t, buf)
	if len(lines) != 1 || lines[0]["level"] != "debug" || lines[0]["msg"] != "shown" {
		t.Errorf("unexpected lines %v", lines)
	}
}
