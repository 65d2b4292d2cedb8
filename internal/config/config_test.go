package config

import (
	"os"
	"path/filepath"
	"testing"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.MaxImportBytes() != 20<<20 {
		t.Errorf("unexpected import limit %d", cfg.MaxImportBytes())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opis.yaml")
	yaml := "db: /var/lib/opis.db\naddr: \":9000\"\ninactive_days: 14\nlang: en\ntraffic_light_threshold: 7\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, env(map[string]string{
		"OPIS_ADDR":          ":9100",
		"OPIS_MAX_IMPORT_MB": "5",
		"OPIS_LANG":          " ",
	}))
	if err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.DB = "/var/lib/opis.db"
	want.Addr = ":9100"
	want.InactiveDays = 14
	want.Lang = "en"
	want.TrafficLightThreshold = 7
	want.MaxImportMB = 5
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("inactive_days: [1"), 0o600)
	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("lang: de\n"), 0o600)

	tests := []struct {
		name string
		path string
		env  map[string]string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), nil},
		{"bad yaml", bad, nil},
		{"unknown lang", invalid, nil},
		{"non-numeric env", "", map[string]string{"OPIS_INACTIVE_DAYS": "soon"}},
		{"zero days", "", map[string]string{"OPIS_INACTIVE_DAYS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path, env(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
