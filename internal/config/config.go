// Package config loads server settings from defaults, an optional YAML
// file and OPIS_* environment variables. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/opis/internal/aging"
)

// Config holds the server settings.
type Config struct {
	DB                    string `yaml:"db"`
	Addr                  string `yaml:"addr"`
	AdminUser             string `yaml:"admin_user"`
	Log                   string `yaml:"log"`
	InactiveDays          int    `yaml:"inactive_days"`
	MaxImportMB           int    `yaml:"max_import_mb"`
	Lang                  string `yaml:"lang"`
	TrafficLightThreshold int    `yaml:"traffic_light_threshold"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DB:                    "opis.sqlite3",
		Addr:                  ":8080",
		AdminUser:             "Admin",
		InactiveDays:          30,
		MaxImportMB:           20,
		Lang:                  "ru",
		TrafficLightThreshold: aging.DefaultThreshold,
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and then with environment variables from lookup.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	str := map[string]*string{
		"OPIS_DB":   &c.DB,
		"OPIS_ADDR": &c.Addr,
		"OPIS_LANG": &c.Lang,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"OPIS_INACTIVE_DAYS": &c.InactiveDays,
		"OPIS_MAX_IMPORT_MB": &c.MaxImportMB,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	var errs []error
	if c.DB == "" {
		errs = append(errs, errors.New("db path is empty"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.InactiveDays <= 0 {
		errs = append(errs, fmt.Errorf("inactive_days must be positive, got %d", c.InactiveDays))
	}
	if c.MaxImportMB <= 0 {
		errs = append(errs, fmt.Errorf("max_import_mb must be positive, got %d", c.MaxImportMB))
	}
	if c.Lang != "ru" && c.Lang != "en" {
		errs = append(errs, fmt.Errorf("lang must be ru or en, got %q", c.Lang))
	}
	if !aging.ValidThreshold(c.TrafficLightThreshold) {
		errs = append(errs, fmt.Errorf("traffic_light_threshold must be between %d and %d", aging.MinThreshold, aging.MaxThreshold))
	}
	return errors.Join(errs...)
}

// MaxImportBytes is the import upload limit in bytes.
func (c Config) MaxImportBytes() int64 {
	return int64(c.MaxImportMB) << 20
}
