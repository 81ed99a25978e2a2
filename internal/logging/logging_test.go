package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testStringer string

func (s testStringer) String() string { return string(s) }

func TestInitAndLoggingToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "adapterbench.log")

	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
		SetDebug(false)
	})

	LogEvent("hello %s", "world")
	Debugf("hidden %s", "line")
	SetDebug(true)
	Debugf("visible %s", "line")
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Fatalf("expected LogEvent content, got: %s", content)
	}
	if strings.Contains(content, "hidden line") {
		t.Fatalf("expected debug line suppressed, got: %s", content)
	}
	if !strings.Contains(content, "[DEBUG] visible line") {
		t.Fatalf("expected debug line, got: %s", content)
	}
}

func TestBuildAdapterMessageDefaults(t *testing.T) {
	msg := buildAdapterMessage(" trial ", 2, " ", "", map[string]any{"ok": true})
	if !strings.HasPrefix(msg, "[TRIAL]") {
		t.Fatalf("expected uppercased stage, got: %s", msg)
	}
	if !strings.Contains(msg, "adapter=2") {
		t.Fatalf("expected adapter index, got: %s", msg)
	}
	if !strings.Contains(msg, `name="unknown"`) {
		t.Fatalf("expected default name, got: %s", msg)
	}
	if !strings.Contains(msg, "backend=unknown") {
		t.Fatalf("expected default backend, got: %s", msg)
	}
	if !strings.Contains(msg, "payload={\"ok\":true}") {
		t.Fatalf("expected payload json, got: %s", msg)
	}
}

func TestBuildAdapterMessageWithoutPayload(t *testing.T) {
	msg := buildAdapterMessage("init", 0, "gonum/mat (float64)", "cpu", nil)
	if strings.Contains(msg, "payload=") {
		t.Fatalf("expected no payload, got: %s", msg)
	}
	if !strings.Contains(msg, `name="gonum/mat (float64)"`) {
		t.Fatalf("expected quoted name, got: %s", msg)
	}
}

func TestFormatPayloadVariants(t *testing.T) {
	if got := formatPayload(nil); got != "null" {
		t.Fatalf("nil payload: %s", got)
	}
	if got := formatPayload(" "); got != `""` {
		t.Fatalf("empty string payload: %s", got)
	}
	if got := formatPayload([]byte("hi")); got != "hi" {
		t.Fatalf("byte payload: %s", got)
	}
	if got := formatPayload(testStringer("ok")); got != "ok" {
		t.Fatalf("stringer payload: %s", got)
	}
}

func TestLogAdapterWritesToStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	LogAdapter("error", 1, "gpu", "vulkan", "device lost")
	if !strings.Contains(buf.String(), "[ERROR] adapter=1") || !strings.Contains(buf.String(), "payload=device lost") {
		t.Fatalf("unexpected log line: %s", buf.String())
	}
}
