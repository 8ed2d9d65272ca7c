package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewServiceConfig_DefaultValues(t *testing.T) {
	cfg := NewServiceConfig()

	if cfg.Host() != DefaultHost {
		t.Fatalf("Host() = %q, want %q", cfg.Host(), DefaultHost)
	}
	if cfg.Port() != DefaultPort {
		t.Fatalf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.JobServiceURL() != "" {
		t.Fatalf("JobServiceURL() = %q, want empty", cfg.JobServiceURL())
	}
	if cfg.PollInterval() != DefaultPollInterval {
		t.Fatalf("PollInterval() = %v, want %v", cfg.PollInterval(), DefaultPollInterval)
	}
	if cfg.EventLogDir() != "" {
		t.Fatalf("EventLogDir() = %q, want empty", cfg.EventLogDir())
	}
	if cfg.Verbose() {
		t.Fatalf("Verbose() = true, want false")
	}
}

func TestNewServiceConfig_AppliesFunctionalOptions(t *testing.T) {
	cfg := NewServiceConfig(
		WithHost("0.0.0.0"),
		WithPort(9000),
		WithJobServiceURL("http://jobs.internal:8000"),
		WithPollInterval(500*time.Millisecond),
		WithEventLogDir("/var/log/trialbench"),
		WithAllowedOrigins([]string{"http://localhost:5173"}),
		WithVerbose(true),
	)

	if cfg.Host() != "0.0.0.0" {
		t.Fatalf("Host() = %q, want %q", cfg.Host(), "0.0.0.0")
	}
	if cfg.Port() != 9000 {
		t.Fatalf("Port() = %d, want 9000", cfg.Port())
	}
	if cfg.JobServiceURL() != "http://jobs.internal:8000" {
		t.Fatalf("JobServiceURL() = %q, want %q", cfg.JobServiceURL(), "http://jobs.internal:8000")
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Fatalf("PollInterval() = %v, want 500ms", cfg.PollInterval())
	}
	if cfg.EventLogDir() != "/var/log/trialbench" {
		t.Fatalf("EventLogDir() = %q, want %q", cfg.EventLogDir(), "/var/log/trialbench")
	}
	if len(cfg.AllowedOrigins()) != 1 || cfg.AllowedOrigins()[0] != "http://localhost:5173" {
		t.Fatalf("AllowedOrigins() = %v, want one localhost origin", cfg.AllowedOrigins())
	}
	if !cfg.Verbose() {
		t.Fatalf("Verbose() = false, want true")
	}
}

func TestOptionOrder_LastOptionWins(t *testing.T) {
	cfg := NewServiceConfig(
		WithVerbose(true),
		WithVerbose(false),
		WithPort(9000),
		WithPort(9001),
	)

	if cfg.Verbose() {
		t.Fatalf("Verbose() = true, want false")
	}
	if cfg.Port() != 9001 {
		t.Fatalf("Port() = %d, want 9001", cfg.Port())
	}
}

func TestZeroValuesKeepDefaults(t *testing.T) {
	cfg := NewServiceConfig(
		WithHost(""),
		WithPort(0),
		WithPollInterval(0),
	)

	if cfg.Host() != DefaultHost {
		t.Fatalf("Host() = %q, want default", cfg.Host())
	}
	if cfg.Port() != DefaultPort {
		t.Fatalf("Port() = %d, want default", cfg.Port())
	}
	if cfg.PollInterval() != DefaultPollInterval {
		t.Fatalf("PollInterval() = %v, want default", cfg.PollInterval())
	}
}

func TestNewServiceConfig_NilOptionPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for nil option, got none")
		}
	}()

	_ = NewServiceConfig(nil)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trialbench.yaml")
	content := `host: 0.0.0.0
port: 9100
job_service_url: http://jobs.internal:8000
poll_interval: 750ms
event_log_dir: logs
allowed_origins:
  - http://localhost:5173
verbose: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	cfg := NewServiceConfig(opts...)
	if cfg.Host() != "0.0.0.0" {
		t.Fatalf("Host() = %q, want %q", cfg.Host(), "0.0.0.0")
	}
	if cfg.Port() != 9100 {
		t.Fatalf("Port() = %d, want 9100", cfg.Port())
	}
	if cfg.PollInterval() != 750*time.Millisecond {
		t.Fatalf("PollInterval() = %v, want 750ms", cfg.PollInterval())
	}
	if !cfg.Verbose() {
		t.Fatalf("Verbose() = false, want true")
	}
}

func TestLoadFile_FlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trialbench.yaml")
	if err := os.WriteFile(path, []byte("port: 9100\n"), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	opts = append(opts, WithPort(9200))

	if got := NewServiceConfig(opts...).Port(); got != 9200 {
		t.Fatalf("Port() = %d, want 9200", got)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [not a number\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}

	path2 := filepath.Join(t.TempDir(), "baddur.yaml")
	if err := os.WriteFile(path2, []byte("poll_interval: soon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path2); err == nil {
		t.Fatal("expected error for bad poll_interval")
	}
}
