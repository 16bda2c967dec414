// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the token goes to the local storage backend.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"myblog/client/internal/xdg"
)

// Defaults applied when the config file is missing or a field is empty.
const (
	DefaultAPIURL  = "http://localhost:5000"
	DefaultStorage = "auto"
	DefaultPerPage = 10
)

// Config holds non-sensitive CLI settings.
type Config struct {
	APIURL   string `json:"api_url"`
	Storage  string `json:"storage"`
	Debug    bool   `json:"debug"`
	PerPage  int    `json:"per_page"`
	Timezone string `json:"timezone"`
}

// Default returns the configuration used when nothing is stored.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		Storage:  DefaultStorage,
		PerPage:  DefaultPerPage,
		Timezone: "Local",
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
// Environment overrides are applied on top of the file.
func Load() (Config, error) {
	c, err := readFile()
	if err != nil {
		return c, err
	}
	c.applyEnv()
	c.fillDefaults()
	return c, nil
}

// LoadFile is Load without environment overrides, for editing the file.
func LoadFile() (Config, error) {
	c, err := readFile()
	if err != nil {
		return c, err
	}
	c.fillDefaults()
	return c, nil
}

func readFile() (Config, error) {
	c := Default()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("MYBLOG_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MYBLOG_STORAGE")); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("MYBLOG_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

func (c *Config) fillDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.Storage == "" {
		c.Storage = DefaultStorage
	}
	if c.PerPage <= 0 {
		c.PerPage = DefaultPerPage
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
}

// Keys lists the settings accepted by Get and Set.
var Keys = []string{"api_url", "storage", "debug", "per_page", "timezone"}

// Get returns a setting by its file key.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "storage":
		return c.Storage, nil
	case "debug":
		return strconv.FormatBool(c.Debug), nil
	case "per_page":
		return strconv.Itoa(c.PerPage), nil
	case "timezone":
		return c.Timezone, nil
	}
	return "", fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(Keys, ", "))
}

// Set assigns a setting by its file key, validating the value.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "api_url":
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("api_url must be an absolute URL, got %q", value)
		}
		c.APIURL = strings.TrimRight(value, "/")
	case "storage":
		switch value {
		case "auto", "keychain", "sqlite", "memory":
			c.Storage = value
		default:
			return fmt.Errorf("storage must be auto, keychain, sqlite or memory, got %q", value)
		}
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("debug must be true or false, got %q", value)
		}
		c.Debug = b
	case "per_page":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 100 {
			return fmt.Errorf("per_page must be between 1 and 100, got %q", value)
		}
		c.PerPage = n
	case "timezone":
		if value != "Local" {
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Errorf("unknown timezone %q", value)
			}
		}
		c.Timezone = value
	default:
		_, err := c.Get(key)
		return err
	}
	return nil
}
