package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigsAreValid(t *testing.T) {
	for name, cfg := range map[string]*Config{
		"server": DefaultServerConfig(),
		"client": DefaultClientConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			if errs := cfg.Validate(); len(errs) > 0 {
				t.Fatalf("default %s config invalid: %v", name, errs)
			}
			if _, err := cfg.ParseMultiaddrs(); err != nil {
				t.Fatalf("ParseMultiaddrs: %v", err)
			}
		})
	}
}

func TestLoadYAML_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
ping:
  actor_name: custom-actor
  count: 7
  interval: 500ms
discovery:
  resolve_attempts: 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultClientConfig()
	if err := LoadYAML(path, cfg); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	if cfg.Ping.ActorName != "custom-actor" {
		t.Fatalf("actor_name = %q; want custom-actor", cfg.Ping.ActorName)
	}
	if cfg.Ping.Count != 7 {
		t.Fatalf("count = %d; want 7", cfg.Ping.Count)
	}
	if cfg.Ping.Interval != 500*time.Millisecond {
		t.Fatalf("interval = %v; want 500ms", cfg.Ping.Interval)
	}
	if cfg.Discovery.ResolveAttempts != 3 {
		t.Fatalf("resolve_attempts = %d; want 3", cfg.Discovery.ResolveAttempts)
	}
	// Untouched keys keep their defaults
	if cfg.Discovery.PresenceTopic == "" {
		t.Fatalf("presence_topic default lost on partial load")
	}
}

func TestLoadYAML_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("nonsense_key: true\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultClientConfig()
	if err := LoadYAML(path, cfg); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Node.ListenAddresses = []string{"not-a-multiaddr"}
	cfg.Node.DataDir = ""
	cfg.Ping.ActorName = ""
	cfg.Discovery.BootstrapPeers = []string{"/ip4/127.0.0.1/tcp/4001"} // missing /p2p/<id>
	cfg.Logging.Level = "verbose"

	errs := cfg.Validate()
	if len(errs) < 5 {
		t.Fatalf("expected at least 5 validation errors, got %d: %v", len(errs), errs)
	}

	var paths []string
	for _, err := range errs {
		paths = append(paths, err.Error())
	}
	joined := strings.Join(paths, "\n")
	for _, want := range []string{
		"node.listen_addresses[0]",
		"node.data_dir",
		"ping.actor_name",
		"discovery.bootstrap_peers[0]",
		"logging.level",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing validation error for %s in:\n%s", want, joined)
		}
	}
}
