package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerRoutesByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(NewHandler(&out, &errOut)).With("component", "test")

	logger.Debug("hidden")
	logger.Info("hello", "n", 1)
	logger.Warn("careful")
	logger.Error("broken")

	if strings.Contains(out.String(), "hidden") || strings.Contains(errOut.String(), "hidden") {
		t.Error("debug records should be dropped")
	}
	for _, msg := range []string{"hello", "careful", "component=test"} {
		if !strings.Contains(out.String(), msg) {
			t.Errorf("stdout missing %q: %s", msg, out.String())
		}
	}
	if strings.Contains(out.String(), "broken") {
		t.Error("errors should not go to stdout")
	}
	if !strings.Contains(errOut.String(), "broken") {
		t.Errorf("stderr missing error record: %s", errOut.String())
	}
}

func TestHandlerWithGroup(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(NewHandler(&out, &errOut)).WithGroup("req")

	logger.Info("done", "status", 200)
	if !strings.Contains(out.String(), "req.status=200") {
		t.Errorf("expected grouped attribute, got %s", out.String())
	}
}
