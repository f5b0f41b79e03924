package configs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var testSchema = `
learning_rate?: float
batch_size?: int
checkpoint_dir?: string
`

func writeTestConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderAssignFirst(t *testing.T) {
	path := writeTestConfig(t, "test.cue", `
learning_rate: 0.001
batch_size: 64
`)
	loader := NewLoader([]string{path}, testSchema)

	var lr float64
	if err := loader.AssignFirst("learning_rate", &lr); err != nil {
		t.Fatal(err)
	}
	if lr != 0.001 {
		t.Fatalf("got %v", lr)
	}

	var batchSize int
	if err := loader.AssignFirst("batch_size", &batchSize); err != nil {
		t.Fatal(err)
	}
	if batchSize != 64 {
		t.Fatalf("got %v", batchSize)
	}

	var dir string
	err := loader.AssignFirst("checkpoint_dir", &dir)
	if !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestLoaderPrecedence(t *testing.T) {
	path1 := writeTestConfig(t, "a.cue", `batch_size: 32`)
	path2 := writeTestConfig(t, "b.cue", `batch_size: 64`)
	loader := NewLoader([]string{path1, path2}, testSchema)

	if n := First[int](loader, "batch_size"); n != 32 {
		t.Fatalf("got %v", n)
	}
}

func TestUnknownField(t *testing.T) {
	path := writeTestConfig(t, "bad.cue", `no_such_knob: true`)
	loader := NewLoader([]string{path}, testSchema)
	var v bool
	err := loader.AssignFirst("no_such_knob", &v)
	if err == nil {
		t.Fatal("should error")
	}
	t.Logf("%v", err)
}
