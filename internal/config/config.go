// Package config loads and saves the YAML runtime configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type SimCfg struct {
	Size      int     `yaml:"size"`       // grid edge, texels
	Stiffness float64 `yaml:"stiffness"`  // wave propagation factor
	Damping   float64 `yaml:"damping"`    // per-step velocity retention
	Workers   int     `yaml:"workers"`    // 0 = GOMAXPROCS
}

type DropCfg struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

type ServerCfg struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	FPS    int       `yaml:"fps"`
	Scene  string    `yaml:"scene"`
	Preset string    `yaml:"preset,omitempty"`
	Sim    SimCfg    `yaml:"sim"`
	Drop   DropCfg   `yaml:"drop"` // defaults for pointer-driven drops
	Server ServerCfg `yaml:"server"`
}

// Default returns the reference configuration: a 256x256 grid stepped at
// 60 FPS with the stock solver constants.
func Default() *Config {
	return &Config{
		FPS:    60,
		Scene:  "shaded",
		Preset: "Noon",
		Sim:    SimCfg{Size: 256, Stiffness: 2.0, Damping: 0.995},
		Drop:   DropCfg{Radius: 0.03, Strength: 1.0},
		Server: ServerCfg{Addr: "localhost:8474"},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
