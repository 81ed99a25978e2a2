package report

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalidReport is returned when a document does not match the report schema.
var ErrInvalidReport = errors.New("invalid report")

// Schema returns the embedded JSON Schema for persisted reports.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// Validate checks a JSON document against the report schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidReport, strings.Join(errs, ", "))
}

// ValidateFile reads and validates a persisted JSON report.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report %s: %w", path, err)
	}
	return Validate(data)
}
