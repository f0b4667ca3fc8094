// Package config loads defaults from a toml config file. Flags given
// on the command line win over anything configured here.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Title template printed above each image; empty means no title.
	Title string `koanf:"title"`

	// Cell aspect correction, 1.0 for square pixels.
	Stretch float64 `koanf:"stretch"`

	Upscale        bool `koanf:"upscale"`
	UpscaleInteger bool `koanf:"upscale_integer"`

	// auto, halfblock, quarter, kitty or iterm2.
	Pixelation string `koanf:"pixelation"`

	// Animation loops; -1 loops until interrupted.
	Loops int `koanf:"loops"`
}

func Default() Config {
	return Config{
		Stretch:    1.0,
		Pixelation: "auto",
		Loops:      1,
	}
}

// Load reads config files in order of priority (last wins) on top of
// the defaults.
func Load() (Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return Config{}, err
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "termcat", "config.toml"))
	}
	paths = append(paths, "termcat.toml")
	return paths
}
