// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Story    StoryConfig    `toml:"story"`
	Web      WebConfig      `toml:"web"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Potty        *bool    `toml:"potty"`
	DrillRounds  *int     `toml:"drill-rounds"`
	DrillWords   *int     `toml:"drill-words"`
	SprintRounds *int     `toml:"sprint-rounds"`
	StoryRounds  *int     `toml:"story-rounds"`
	BossSeconds  *int     `toml:"boss-seconds"`
	CapsPct      *float64 `toml:"caps"`
	PunctPct     *float64 `toml:"punct"`
	PunctSet     *string  `toml:"punct-set"`
	WordsFile    *string  `toml:"words-file"`
}

// StoryConfig maps story settings.
type StoryConfig struct {
	// File is a CUE story graph replacing the built-in one.
	File *string `toml:"file"`
}

// WebConfig maps web server settings.
type WebConfig struct {
	Addr       *string   `toml:"addr"`
	SessionTTL *Duration `toml:"session-ttl"`
}

// Duration decodes TOML strings such as "72h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
