package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "confgen.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if diff := cmp.Diff(Default(), *cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleMatchesDefaults(t *testing.T) {
	var cfg Config
	if err := toml.Unmarshal([]byte(Sample()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("sample config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[generator]
top_n = 20
energy_window = 6.0

[crest]
method = " GFNFF "
cpus = 8

[logging]
format = "JSON"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	want.Generator.TopN = 20
	want.Generator.EnergyWindow = 6
	want.Crest.Method = "gfnff"
	want.Crest.CPUs = 8
	want.Logging.Format = "json"
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReportsEveryProblem(t *testing.T) {
	path := writeConfig(t, `
[generator]
min_macro_ring_size = 2
top_n = -1

[crest]
method = "am1"

[logging]
level = "loud"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() of an invalid config should fail")
	}
	for _, want := range []string{"min_macro_ring_size", "top_n", "crest.method", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error lacks %q: %v", want, err)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "[generator]\nring_size = 12\n"},
		{"bad toml", "[generator\n"},
		{"wrong type", "[crest]\ncpus = \"many\"\n"},
		{"missing work dir", "[crest]\nwork_dir = \"/does/not/exist/confgen\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("Load() should fail for %s", tt.name)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Output.Plot = true
	text, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var back Config
	if err := toml.Unmarshal([]byte(text), &back); err != nil {
		t.Fatalf("encoded config does not parse: %v", err)
	}
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
