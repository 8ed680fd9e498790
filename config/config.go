// Package config loads the YAML engine and scene descriptions.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type EngineConfig struct {
	Window WindowConfig `yaml:"window"`
	Camera CameraConfig `yaml:"camera"`
	Fog    FogConfig    `yaml:"fog"`
	Assets AssetsConfig `yaml:"assets"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CameraConfig struct {
	FOVDegrees float64 `yaml:"fov_degrees"`
	Near       float64 `yaml:"near"`
	Far        float64 `yaml:"far"`
}

type FogConfig struct {
	Enabled bool       `yaml:"enabled"`
	Start   float64    `yaml:"start"`
	End     float64    `yaml:"end"`
	Color   [3]float64 `yaml:"color"`
}

type AssetsConfig struct {
	Dir     string `yaml:"dir"`
	Workers int    `yaml:"workers"`
	Watch   bool   `yaml:"watch"`
}

// Defaults returns the configuration used for every key a file leaves out.
func Defaults() EngineConfig {
	return EngineConfig{
		Window: WindowConfig{Width: 800, Height: 600},
		Camera: CameraConfig{FOVDegrees: 60, Near: 0.05, Far: 1000},
		Fog: FogConfig{
			Start: 10,
			End:   100,
			Color: [3]float64{0.5, 0.5, 0.5},
		},
		Assets: AssetsConfig{Dir: ".", Workers: 4},
	}
}

func (c EngineConfig) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		return errors.Errorf("camera fov %v out of (0, 180)", c.Camera.FOVDegrees)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return errors.Errorf("camera planes near %v far %v", c.Camera.Near, c.Camera.Far)
	}
	if c.Fog.End < c.Fog.Start {
		return errors.Errorf("fog ends at %v before it starts at %v", c.Fog.End, c.Fog.Start)
	}
	if c.Assets.Workers < 1 {
		return errors.Errorf("assets workers %d must be at least 1", c.Assets.Workers)
	}

	return nil
}

// ParseEngine decodes data over Defaults and validates the result.
func ParseEngine(data []byte) (EngineConfig, error) {
	c := Defaults()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return EngineConfig{}, errors.Wrap(err, "engine config")
	}
	if err := c.Validate(); err != nil {
		return EngineConfig{}, errors.Wrap(err, "engine config")
	}

	return c, nil
}

func LoadEngine(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, errors.Wrapf(err, "config: load %s", path)
	}

	c, err := ParseEngine(data)
	if err != nil {
		return EngineConfig{}, errors.Wrapf(err, "config: %s", path)
	}

	return c, nil
}
