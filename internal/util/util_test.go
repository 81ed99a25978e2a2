// internal/util/util_test.go
package util

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "sample.txt")
	data := []byte("test payload")

	if err := WriteFile(path, data); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("unexpected file contents: got %q want %q", got, data)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "no truncation", in: "hello", max: 10, want: "hello"},
		{name: "exact fit", in: "hello", max: 5, want: "hello"},
		{name: "ascii truncation", in: "helloworld", max: 6, want: "hello…"},
		{name: "multibyte truncation", in: "こんにちは世界", max: 5, want: "こんにち…"},
		{name: "no limit", in: "unbounded", max: 0, want: "unbounded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q,%d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestWrapToWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{name: "fits", in: "device lost", width: 20, want: []string{"device lost"}},
		{name: "word wrap", in: "trial 4: matmul: device lost", width: 16, want: []string{"trial 4: matmul:", "device lost"}},
		{name: "long word split", in: "abcdefghij xy", width: 4, want: []string{"abcd", "efgh", "ij", "xy"}},
		{name: "empty", in: "", width: 10, want: []string{""}},
		{name: "no width", in: "a b", width: 0, want: []string{"a b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WrapToWidth(tt.in, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("WrapToWidth(%q,%d)=%q want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}
