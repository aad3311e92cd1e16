package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/farcloser/ecoguard/internal/logging"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer

	logger, err := logging.New(&buf, "text", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "rule", "long-line")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at the default level")
	}

	if !strings.Contains(out, "rule=long-line") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := logging.New(&buf, "JSON", "debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("scan", "files", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected a json record, got %q: %v", buf.String(), err)
	}

	if record["msg"] != "scan" || record["files"] != float64(3) {
		t.Errorf("unexpected record %v", record)
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	if _, err := logging.New(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Error("expected an error for an unknown format")
	}

	if _, err := logging.New(&bytes.Buffer{}, "text", "loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
