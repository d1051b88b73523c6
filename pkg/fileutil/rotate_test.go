package fileutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSplitExt(t *testing.T) {
	tests := []struct {
		path     string
		wantStem string
		wantExt  string
		wantOK   bool
	}{
		{"out.pdb", "out", "pdb", true},
		{"runs/out.pdb", "runs/out", "pdb", true},
		{"../out.txt", "../out", "txt", true},
		{"out", "", "", false},
		{"out.conf.pdb", "", "", false},
		{".pdb", "", "", false},
		{"out.", "out", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			stem, ext, ok := SplitExt(tt.path)
			if stem != tt.wantStem || ext != tt.wantExt || ok != tt.wantOK {
				t.Errorf("SplitExt(%q) = %q, %q, %v, want %q, %q, %v",
					tt.path, stem, ext, ok, tt.wantStem, tt.wantExt, tt.wantOK)
			}
		})
	}
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdb")

	got, err := Rotate(path)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if want := filepath.Join(dir, "out_0.pdb"); got != want {
		t.Errorf("Rotate() = %q, want %q", got, want)
	}

	for _, name := range []string{"out_0.pdb", "out_1.pdb", "out_3.pdb"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err = Rotate(path)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if want := filepath.Join(dir, "out_2.pdb"); got != want {
		t.Errorf("Rotate() = %q, want %q", got, want)
	}
}

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdb")
	first := NewLock(path)
	if err := first.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	second := NewLock(path)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := second.Acquire(ctx); err == nil {
		t.Fatal("second Acquire() should time out while the lock is held")
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := second.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	if err := second.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
}
