package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "production")
	buf.Reset()

	log.WithField("eligible", 2).Info("Notification delivered")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "Notification delivered" || entry["eligible"] != float64(2) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNew_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "development")
	log.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "chatty", "development")
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %s", log.GetLevel())
	}
	if !strings.Contains(buf.String(), "Invalid log level") {
		t.Fatalf("expected a warning, got %q", buf.String())
	}
}
