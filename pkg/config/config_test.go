package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
server:
  listen-addr: 127.0.0.1
  port: 9090
storage:
  sqlite-path: /var/lib/waqt/waqt.db
location:
  latitude: 41.2995
  longitude: 69.2401
  timezone: Asia/Tashkent
  city: Tashkent
  ip-timeout: 2s
prayer:
  method: Karachi
  madhab: Hanafi
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestYAMLProvider(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	p := NewYAMLProvider(path)
	c, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if c.Server.ListenAddr != "127.0.0.1" || c.Server.Port != 9090 {
		t.Errorf("server = %+v", c.Server)
	}
	if c.Storage.SQLitePath != "/var/lib/waqt/waqt.db" {
		t.Errorf("storage = %+v", c.Storage)
	}
	if !c.Location.HasFixedLocation() || c.Location.City != "Tashkent" {
		t.Errorf("location = %+v", c.Location)
	}
	if c.Location.IPLookupURL != DefaultIPLookupURL {
		t.Errorf("IPLookupURL default not applied: %q", c.Location.IPLookupURL)
	}
	if c.Prayer.Method != "Karachi" || c.Prayer.Madhab != "Hanafi" {
		t.Errorf("prayer = %+v", c.Prayer)
	}

	ip, device, ttl, err := c.Location.Timeouts()
	if err != nil {
		t.Fatal(err)
	}
	if ip != 2*time.Second || device != DefaultDeviceTimeout || ttl != DefaultCacheTTL {
		t.Errorf("timeouts = %v %v %v", ip, device, ttl)
	}

	loc, err := p.GetLocationConfig()
	if err != nil || loc.Timezone != "Asia/Tashkent" {
		t.Errorf("GetLocationConfig = %+v, %v", loc, err)
	}
	if !p.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	if _, err := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml")).LoadConfig(); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestEnvProvider(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", sampleYAML)
	envFile := writeFile(t, dir, ".env", "WAQT_HTTP_PORT=7070\nWAQT_LAT=51.5074\nWAQT_CITY=London\n")

	t.Setenv(EnvLatitude, "40.7128")
	t.Setenv(EnvTimezone, "America/New_York")

	p, err := NewEnvProvider(NewYAMLProvider(path), envFile, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("NewEnvProvider: %v", err)
	}

	c, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if c.Server.Port != 7070 {
		t.Errorf("port = %d, expected 7070 from .env", c.Server.Port)
	}
	if c.Location.Latitude != 40.7128 {
		t.Errorf("latitude = %f, expected process env to win over .env", c.Location.Latitude)
	}
	if c.Location.Longitude != 69.2401 {
		t.Errorf("longitude = %f, expected the YAML value", c.Location.Longitude)
	}
	if c.Location.Timezone != "America/New_York" || c.Location.City != "London" {
		t.Errorf("location = %+v", c.Location)
	}
}

func TestEnvProviderRejectsBadValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	tests := []struct {
		key   string
		value string
	}{
		{EnvHTTPPort, "eighty"},
		{EnvLatitude, "north"},
		{EnvLatitude, "91"},
		{EnvTimezone, "Mars/Olympus_Mons"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			p, err := NewEnvProvider(NewYAMLProvider(path))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := p.LoadConfig(); err == nil {
				t.Errorf("expected %s=%s to be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestSQLiteProvider(t *testing.T) {
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	defer p.Close()

	empty, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig on empty db: %v", err)
	}
	if empty.Server.Port != DefaultPort {
		t.Errorf("empty config port = %d, expected default", empty.Server.Port)
	}

	yamlCfg, err := parseYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SaveConfig(yamlCfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	c, err := p.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if *c != *yamlCfg {
		t.Errorf("stored config = %+v, expected %+v", c, yamlCfg)
	}

	bad := *yamlCfg
	bad.Server.Port = 70000
	if err := p.SaveConfig(&bad); err == nil {
		t.Error("SaveConfig accepted an invalid port")
	}
}
