package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ivanvallejoss/hr-system/internal/platform/config"
	"github.com/sirupsen/logrus"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := newWithOutput(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("newWithOutput returned error: %v", err)
	}

	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	logger.WithField("employee_id", "emp-1").Info("salary updated")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["employee_id"] != "emp-1" || entry["msg"] != "salary updated" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LogConfig{Level: "verbose"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
