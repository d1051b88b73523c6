package toolkit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestCrestSearchCancelledKeepsScratchDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	bin := t.TempDir()
	slow := filepath.Join(bin, "crest")
	if err := os.WriteFile(slow, []byte("#!/bin/sh\nsleep 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	root := t.TempDir()
	c := &Crest{
		Command:  slow,
		WorkRoot: root,
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
	}

	mol := flatEthanol()
	mol.Atoms[2].Pos[2] = 0.1

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, mol)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Search() error = %v, want context.DeadlineExceeded", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "confgen-crest-") {
		t.Fatalf("Expected the scratch directory to be left in place, found %v", entries)
	}
	if !strings.Contains(logs.String(), entries[0].Name()) {
		t.Errorf("Expected the scratch directory to be logged, got %q", logs.String())
	}

	// let the fake CREST exit before the temporary directories are removed
	time.Sleep(time.Second)
}
