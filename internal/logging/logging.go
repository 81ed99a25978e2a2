package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
	debug   bool
)

// Init routes the standard logger to stdout and, when logPath is set, to an
// append-only log file.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	writers = append(writers, os.Stdout)

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// SetDebug toggles Debugf output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = enabled
}

func debugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// Debugf logs only when debug output is enabled.
func Debugf(format string, args ...any) {
	if !debugEnabled() {
		return
	}
	log.Println("[DEBUG] " + fmt.Sprintf(format, args...))
}

// LogAdapter logs a structured line about one adapter at a pipeline stage.
func LogAdapter(stage string, index int, name, backend string, payload any) {
	log.Println(buildAdapterMessage(stage, index, name, backend, payload))
}

func buildAdapterMessage(stage string, index int, name, backend string, payload any) string {
	st := strings.ToUpper(strings.TrimSpace(stage))
	nameValue := strings.TrimSpace(name)
	if nameValue == "" {
		nameValue = "unknown"
	}
	backendValue := strings.TrimSpace(backend)
	if backendValue == "" {
		backendValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", st)}
	parts = append(parts, fmt.Sprintf("adapter=%d", index))
	parts = append(parts, fmt.Sprintf("name=%q", nameValue))
	parts = append(parts, fmt.Sprintf("backend=%s", backendValue))
	if payload != nil {
		parts = append(parts, fmt.Sprintf("payload=%s", formatPayload(payload)))
	}
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
