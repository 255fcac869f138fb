package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Transform.Selector.Kind != SelectorKindNone {
		t.Errorf("Selector.Kind = %s, want none", cfg.Transform.Selector.Kind)
	}
	if cfg.Transform.PreserveEmpty {
		t.Error("PreserveEmpty must be off by default")
	}
	if cfg.Output.SkipUnchanged {
		t.Error("SkipUnchanged must be off by default")
	}
	if cfg.Output.Archive != ArchiveModeRepack {
		t.Errorf("Archive = %s, want repack", cfg.Output.Archive)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("Console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}

	opts, err := cfg.Transform.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if !opts.Selector.IsAll() {
		t.Errorf("default selector must match all rules, got %s", opts.Selector)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
transform:
  selector:
    kind: substring
    value: ".btn"
  preserve_empty: true
output:
  skip_unchanged: true
  archive: extract
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Transform.Selector.Kind != SelectorKindSubstring || cfg.Transform.Selector.Value != ".btn" {
		t.Errorf("unexpected selector %+v", cfg.Transform.Selector)
	}
	if !cfg.Transform.PreserveEmpty {
		t.Error("Expected PreserveEmpty to be true")
	}
	if !cfg.Output.SkipUnchanged {
		t.Error("Expected SkipUnchanged to be true")
	}
	if cfg.Output.Archive != ArchiveModeExtract {
		t.Errorf("Archive = %s, want extract", cfg.Output.Archive)
	}
	// not mentioned in file - comes from defaults
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("File level = %q, want none", cfg.Logging.FileLogger.Level)
	}

	opts, err := cfg.Transform.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if !opts.PreserveEmpty {
		t.Error("Expected PreserveEmpty option")
	}
	if !opts.Selector.Matches("div .btn") || opts.Selector.Matches(".link") {
		t.Errorf("unexpected matcher behavior %s", opts.Selector)
	}
}

func TestLoadConfiguration_RegexpSelector(t *testing.T) {
	path := writeConfig(t, `version: 1
transform:
  selector:
    kind: regexp
    value: '^\.x{1,2}(?!-)'
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	m, err := cfg.Transform.Selector.Matcher()
	if err != nil {
		t.Fatalf("Matcher() error = %v", err)
	}
	if !m.Matches(".xx") || m.Matches(".x-large") {
		t.Errorf("unexpected matcher behavior %s", m)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ntransform:\n  preserve_empty: true\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"invalid version", "version: 2\n"},
		{"unknown selector kind", "version: 1\ntransform:\n  selector:\n    kind: xpath\n    value: a\n"},
		{"missing selector value", "version: 1\ntransform:\n  selector:\n    kind: substring\n"},
		{"broken regexp", "version: 1\ntransform:\n  selector:\n    kind: regexp\n    value: \"(\"\n"},
		{"unknown archive mode", "version: 1\noutput:\n  archive: unzip\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Transform.Selector = SelectorConfig{Kind: SelectorKindRegexp, Value: `^\.a`}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{"version: 1", "kind: regexp", "preserve_empty: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() output does not contain %q:\n%s", want, out)
		}
	}

	// dumped configuration must load back
	loaded, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("unable to load dumped config: %v", err)
	}
	if loaded.Transform.Selector != cfg.Transform.Selector {
		t.Errorf("selector = %+v, want %+v", loaded.Transform.Selector, cfg.Transform.Selector)
	}
}

func TestSelectorKind(t *testing.T) {
	for _, k := range SelectorKindValues() {
		parsed, err := ParseSelectorKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseSelectorKind(%q) = %v, %v", k.String(), parsed, err)
		}
		if !k.IsValid() {
			t.Errorf("%s must be valid", k)
		}
	}
	if _, err := ParseSelectorKind("xpath"); !errors.Is(err, ErrInvalidSelectorKind) {
		t.Errorf("expected ErrInvalidSelectorKind, got %v", err)
	}
	if _, err := ParseArchiveMode("unzip"); !errors.Is(err, ErrInvalidArchiveMode) {
		t.Errorf("expected ErrInvalidArchiveMode, got %v", err)
	}
	if got := strings.Join(ArchiveModeNames(), ","); got != "repack,extract" {
		t.Errorf("ArchiveModeNames() = %s", got)
	}
	if SelectorKind(7).IsValid() {
		t.Error("out of range kind must be invalid")
	}
	if got := strings.Join(SelectorKindNames(), ","); got != "none,substring,regexp" {
		t.Errorf("SelectorKindNames() = %s", got)
	}
}
