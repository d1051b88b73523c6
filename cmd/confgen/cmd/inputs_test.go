package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const mixedSDF = `broken
  prog

  1  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
  1  9  1  0
M  END
$$$$
methanol
  prog

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.4000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  END
$$$$
`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// names drains src and returns the names of the molecules it yielded.
func names(t *testing.T, src source) []string {
	t.Helper()
	var got []string
	for src.Next(context.Background()) {
		got = append(got, src.Molecule().Name)
	}
	if err := src.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	return got
}

func TestSDFSourceSkipsMalformedRecords(t *testing.T) {
	path := writeInput(t, "mixed.sdf", mixedSDF)

	src, err := openSource(context.Background(), fakeToolkit{}, "", path, "")
	if err != nil {
		t.Fatalf("openSource() error = %v", err)
	}
	defer src.Close()

	var warnings bytes.Buffer
	src.(*sdfSource).warn = &warnings

	if diff := cmp.Diff([]string{"methanol"}, names(t, src)); diff != "" {
		t.Errorf("molecules mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(warnings.String(), "Warning: skipping "+path+": record 1:") {
		t.Errorf("Expected a warning for record 1, got %q", warnings.String())
	}
}

func TestOpenSourceBlankSMILESUsesFile(t *testing.T) {
	path := writeInput(t, "mixed.sdf", mixedSDF)

	if err := validateInputs("  ", path); err != nil {
		t.Fatalf("validateInputs() error = %v", err)
	}
	src, err := openSource(context.Background(), fakeToolkit{}, "  ", path, "")
	if err != nil {
		t.Fatalf("openSource() error = %v", err)
	}
	defer src.Close()
	src.(*sdfSource).warn = &bytes.Buffer{}

	if diff := cmp.Diff([]string{"methanol"}, names(t, src)); diff != "" {
		t.Errorf("molecules mismatch (-want +got):\n%s", diff)
	}
}
