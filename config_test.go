package eos

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestDefaultConfigPassesValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestValidateRejectsOutOfBoundValues(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"n_task too small", func(c *Config) { c.NTask = 1 }},
		{"stack too small", func(c *Config) { c.StackSize = 64 }},
		{"p_max too large", func(c *Config) { c.PMax = MaxPMax + 1 }},
		{"n_semaphores negative", func(c *Config) { c.NSemaphores = -1 }},
		{"n_queues needs double semaphores", func(c *Config) { c.NQueues = c.NSemaphores }},
		{"zero tick period", func(c *Config) { c.TickPeriod = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mut(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected Validate to reject %s", tc.name)
			}
		})
	}
}

// TestLoadConfigYAMLMatchesExplicitValues writes a YAML file naming every
// tunable field and confirms the loaded Config is identical to one built by
// hand, modulo the unexported-comparison-hostile func hooks YAML never
// populates.
func TestLoadConfigYAMLMatchesExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eos.yaml")
	yamlDoc := "n_task: 16\n" +
		"stack_size: 512\n" +
		"p_max: 8\n" +
		"n_semaphores: 20\n" +
		"n_queues: 4\n" +
		"tick_period: 1ms\n"
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	got, err := LoadConfigYAML(path)
	if err != nil {
		t.Fatalf("LoadConfigYAML failed: %v", err)
	}

	want := &Config{
		NTask:       16,
		StackSize:   512,
		PMax:        8,
		NSemaphores: 20,
		NQueues:     4,
		TickPeriod:  time.Millisecond,
	}

	diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Config{}, "SysTickCallback", "InactiveCallback", "EndTaskCallback", "OnErrorCallback"))
	if diff != "" {
		t.Fatalf("loaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigYAMLRejectsInvalidBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eos.yaml")
	if err := os.WriteFile(path, []byte("n_task: 1\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := LoadConfigYAML(path); err == nil {
		t.Fatal("expected LoadConfigYAML to reject an out-of-bounds n_task")
	}
}
