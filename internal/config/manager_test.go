package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestParseJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	writeFile(t, path, `{
		"funpay": {"golden_key": "gk", "user_agent": "ua"},
		"watch": {"interval": "45s", "price_floor": 0.5, "method_filter": "gift", "thread_interval": "5s"},
		"telegram": {"enabled": true, "token": "t", "chat_ids": ["1"]},
		"logging": {"level": "debug", "console": true, "file": {"enabled": false, "path": ""}}
	}`)

	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Funpay.GoldenKey != "gk" || cfg.Watch.Interval != "45s" || !cfg.Telegram.Enabled {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	writeFile(t, path, `{"funpay": {"golden_keyy": "typo"}}`)

	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	writeFile(t, path, `{"watch": {"interval": "30s"}}{"more": true}`)

	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for trailing document")
	}
}

func TestParseYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	writeFile(t, path, "watch:\n  interval: 2m\n  price_floor: 0.4\n")

	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Watch.Interval != "2m" || cfg.Watch.PriceFloor != 0.4 {
		t.Fatalf("yaml not decoded: %+v", cfg.Watch)
	}
}

func TestParseYAMLUnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	writeFile(t, path, "watch:\n  intervall: 2m\n")

	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown yaml key")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent.json"))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Watch.Interval != "30s" || cfg.Watch.PriceFloor != 0.30 {
		t.Fatalf("defaults not applied: %+v", cfg.Watch)
	}
	if m.Get() != cfg {
		t.Fatal("defaults must be committed")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg.Telegram.Token = "secret"
	cfg.Watch.MethodFilter = "gift"
	if err := m.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}
	if got.Telegram.Token != "secret" || got.Watch.MethodFilter != "gift" {
		t.Fatalf("write-back lost values: %+v", got)
	}
}

func TestSaveYAMLKeepsFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	writeFile(t, path, "watch:\n  interval: 2m\n")
	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg.Watch.PriceFloor = 1.5
	if err := m.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("re-Parse after yaml save: %v", err)
	}
	if got.Watch.PriceFloor != 1.5 {
		t.Fatalf("yaml write-back lost value: %+v", got.Watch)
	}
}

func TestParseDurationField(t *testing.T) {
	if d, err := ParseDurationField("x", "30s"); err != nil || d != 30*time.Second {
		t.Fatalf("got %v, %v", d, err)
	}
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty: got %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "banana"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatal("expected error for negative")
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	if d, err := ParseDurationOrDefault("x", "", 7*time.Second); err != nil || d != 7*time.Second {
		t.Fatalf("got %v, %v", d, err)
	}
	if d, err := ParseDurationOrDefault("x", "1m", 7*time.Second); err != nil || d != time.Minute {
		t.Fatalf("got %v, %v", d, err)
	}
}
