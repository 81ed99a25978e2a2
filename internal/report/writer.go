package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/mwiater/adapterbench/internal/benchmark"
	"github.com/mwiater/adapterbench/internal/util"
)

// Supported report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat normalizes a format name; "yml" is accepted for YAML.
func ParseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported report format %q", format)
}

// Marshal encodes the report. The JSON form is validated against the schema
// before either encoding is returned.
func Marshal(format string, r benchmark.Report) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	if f == FormatJSON {
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Write persists the report at path in the given format. Nothing is written
// when the report fails validation.
func Write(path, format string, r benchmark.Report) error {
	data, err := Marshal(format, r)
	if err != nil {
		return err
	}
	if err := util.WriteFile(path, data); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
