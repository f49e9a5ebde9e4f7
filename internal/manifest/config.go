package manifest

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the locale config file looked up when --config is
// not given.
const DefaultConfigName = "fluent.yaml"

// Config is the locale configuration: which locale is authoritative and
// where the per-locale asset trees live.
type Config struct {
	FallbackLanguage string `yaml:"fallback_language"`
	AssetsDir        string `yaml:"assets_dir"`
}

// LoadConfig reads and validates the locale configuration. A relative
// assets_dir is resolved against the config file's directory.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "locale config not found", Path: path}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfigInvalid, Message: err.Error(), Path: path}
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, &LoadError{Code: ErrCodeConfigInvalid, Message: err.Error(), Path: path}
	}
	if cfg.FallbackLanguage == "" {
		return nil, &LoadError{Code: ErrCodeConfigInvalid, Message: "fallback_language must be set", Path: path}
	}
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "."
	}
	if !filepath.IsAbs(cfg.AssetsDir) {
		cfg.AssetsDir = filepath.Join(filepath.Dir(path), cfg.AssetsDir)
	}
	return &cfg, nil
}

// LocaleDir returns the root directory of one locale's assets.
func (c *Config) LocaleDir(locale string) string {
	return filepath.Join(c.AssetsDir, locale)
}

// FallbackDir returns the fallback locale's asset directory.
func (c *Config) FallbackDir() string {
	return c.LocaleDir(c.FallbackLanguage)
}

// Locales lists every locale directory under the assets root, the
// fallback locale included.
func (c *Config) Locales() ([]string, error) {
	entries, err := os.ReadDir(c.AssetsDir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error(), Path: c.AssetsDir}
	}
	var locales []string
	for _, entry := range entries {
		if entry.IsDir() {
			locales = append(locales, entry.Name())
		}
	}
	return locales, nil
}

// TargetLocales lists every locale except the fallback one.
func (c *Config) TargetLocales() ([]string, error) {
	locales, err := c.Locales()
	if err != nil {
		return nil, err
	}
	targets := locales[:0]
	for _, locale := range locales {
		if locale != c.FallbackLanguage {
			targets = append(targets, locale)
		}
	}
	return targets, nil
}
