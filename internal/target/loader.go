package target

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type file struct {
	Targets []Target `yaml:"targets"`
}

func LoadFromFile(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]Target, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse targets YAML: %w", err)
	}
	if err := validate(f.Targets); err != nil {
		return nil, err
	}
	return f.Targets, nil
}

func validate(targets []Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("targets file has no targets")
	}
	for i := range targets {
		t := &targets[i]
		if t.Name == "" {
			return fmt.Errorf("target at index %d has no name", i)
		}
		switch t.Kind {
		case KindLocal:
			if t.Binary == "" {
				return fmt.Errorf("local target %q has no binary", t.Name)
			}
		case KindRemote:
		default:
			return fmt.Errorf("target %q has invalid kind %q", t.Name, t.Kind)
		}
		if t.Branch == "" {
			return fmt.Errorf("target %q has no branch", t.Name)
		}
		switch t.VersionPolicy {
		case "":
			t.VersionPolicy = VersionFull
		case VersionFull, VersionMajor:
		default:
			return fmt.Errorf("target %q has invalid version_policy %q", t.Name, t.VersionPolicy)
		}
	}
	return nil
}

// ApplyVersionPolicy reduces an extracted version string according to the
// target's policy. An empty version stays empty under any policy.
func (t Target) ApplyVersionPolicy(version string) string {
	if version == "" {
		return ""
	}
	switch t.VersionPolicy {
	case VersionMajor:
		if i := strings.Index(version, "."); i > 0 {
			return version[:i]
		}
		return version
	default:
		return version
	}
}
