package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	Driver  string `toml:"driver"`
	Port    string `toml:"port"`
	Verbose bool   `toml:"verbose"`
}

type config struct {
	Driver  string
	Port    string
	Verbose bool
}

func defaultConfig() config {
	return config{
		Driver: "NEXSTAR",
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load mountctl config: %w", err)
	}

	if meta.IsDefined("driver") {
		driver := strings.TrimSpace(raw.Driver)
		if driver != "" {
			cfg.Driver = strings.ToUpper(driver)
		}
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}

	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}

	return cfg, nil
}
