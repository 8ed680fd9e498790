package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Node kinds
const (
	KindEmpty         = "empty"
	KindEntity        = "entity"
	KindCamera        = "camera"
	KindAudioSource   = "audio_source"
	KindAudioListener = "audio_listener"
)

type SceneConfig struct {
	Name  string       `yaml:"name"`
	Nodes []NodeConfig `yaml:"nodes"`
}

type NodeConfig struct {
	Name           string          `yaml:"name"`
	Kind           string          `yaml:"kind"`
	Parent         string          `yaml:"parent"`
	PreserveGlobal bool            `yaml:"preserve_global"`
	Transform      TransformConfig `yaml:"transform"`

	// entity
	Color    []float64       `yaml:"color"`
	Surfaces []SurfaceConfig `yaml:"surfaces"`

	// audio source
	Clip    string `yaml:"clip"`
	Looping bool   `yaml:"looping"`
	Play    bool   `yaml:"play"`
}

// TransformConfig holds a position, Euler angles in degrees and a scale given as one
// uniform value or three per-axis values; an empty scale is unit.
type TransformConfig struct {
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"`
	Scale    []float64  `yaml:"scale"`
}

type SurfaceConfig struct {
	Mesh     string          `yaml:"mesh"`
	Texture  string          `yaml:"texture"`
	Color    []float64       `yaml:"color"`
	Culling  string          `yaml:"culling"`
	Offset   TransformConfig `yaml:"offset"`
	Disabled bool            `yaml:"disabled"`
}

// ScaleVec expands Scale to three components
func (t TransformConfig) ScaleVec() ([3]float64, error) {
	switch len(t.Scale) {
	case 0:
		return [3]float64{1, 1, 1}, nil
	case 1:
		return [3]float64{t.Scale[0], t.Scale[0], t.Scale[0]}, nil
	case 3:
		return [3]float64{t.Scale[0], t.Scale[1], t.Scale[2]}, nil
	default:
		return [3]float64{}, errors.Errorf("scale has %d components, want 1 or 3", len(t.Scale))
	}
}

// ColorVec returns c as RGBA: empty is white, three components are opaque.
func ColorVec(c []float64) ([4]float64, error) {
	switch len(c) {
	case 0:
		return [4]float64{1, 1, 1, 1}, nil
	case 3:
		return [4]float64{c[0], c[1], c[2], 1}, nil
	case 4:
		return [4]float64{c[0], c[1], c[2], c[3]}, nil
	default:
		return [4]float64{}, errors.Errorf("color has %d components, want 3 or 4", len(c))
	}
}

// Validate checks names are unique, parents exist without cycles, and at most one
// listener is declared.
func (s SceneConfig) Validate() error {
	byName := make(map[string]NodeConfig, len(s.Nodes))
	listeners := 0
	for i, n := range s.Nodes {
		if n.Name == "" {
			return errors.Errorf("node %d has no name", i)
		}
		if _, ok := byName[n.Name]; ok {
			return errors.Errorf("node %q declared twice", n.Name)
		}
		byName[n.Name] = n

		switch n.Kind {
		case "", KindEmpty, KindEntity, KindCamera, KindAudioSource:
		case KindAudioListener:
			listeners++
		default:
			return errors.Errorf("node %q has unknown kind %q", n.Name, n.Kind)
		}
		if _, err := n.Transform.ScaleVec(); err != nil {
			return errors.Wrapf(err, "node %q", n.Name)
		}
		if _, err := ColorVec(n.Color); err != nil {
			return errors.Wrapf(err, "node %q", n.Name)
		}
		for k, sf := range n.Surfaces {
			if _, err := ColorVec(sf.Color); err != nil {
				return errors.Wrapf(err, "node %q surface %d", n.Name, k)
			}
			if _, err := sf.Offset.ScaleVec(); err != nil {
				return errors.Wrapf(err, "node %q surface %d", n.Name, k)
			}
		}
	}
	if listeners > 1 {
		return errors.Errorf("%d audio listeners declared, at most one allowed", listeners)
	}

	for _, n := range s.Nodes {
		seen := map[string]bool{n.Name: true}
		for p := n.Parent; p != ""; p = byName[p].Parent {
			if _, ok := byName[p]; !ok {
				return errors.Errorf("node %q has unknown parent %q", n.Name, p)
			}
			if seen[p] {
				return errors.Errorf("node %q is part of a parent cycle", n.Name)
			}
			seen[p] = true
		}
	}

	return nil
}

func ParseScene(data []byte) (SceneConfig, error) {
	var s SceneConfig
	if err := yaml.Unmarshal(data, &s); err != nil {
		return SceneConfig{}, errors.Wrap(err, "scene config")
	}
	if err := s.Validate(); err != nil {
		return SceneConfig{}, errors.Wrap(err, "scene config")
	}

	return s, nil
}

func LoadScene(path string) (SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneConfig{}, errors.Wrapf(err, "config: load %s", path)
	}

	s, err := ParseScene(data)
	if err != nil {
		return SceneConfig{}, errors.Wrapf(err, "config: %s", path)
	}

	return s, nil
}
