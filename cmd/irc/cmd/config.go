package cmd

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/irc/internal/collab"
)

// targetConfig is the on-disk shape of a --target-config YAML file: two
// flat property maps, one for the build machine and one for the host
// the compiled module targets (spec §6's "two property-value maps").
type targetConfig struct {
	Build map[string]collab.PropertyValue `yaml:"build"`
	Host  map[string]collab.PropertyValue `yaml:"host"`
}

// yamlTargetCallback implements collab.TargetCallback by looking a
// property name up in the build map first, falling back to the host
// map (spec §6: "given two property-value maps, returns a property
// value"); the core never needs to know which map answered.
type yamlTargetCallback struct{}

func (yamlTargetCallback) TargetProperty(build, host map[string]collab.PropertyValue, name string) (collab.PropertyValue, bool) {
	if v, ok := build[name]; ok {
		return v, true
	}
	v, ok := host[name]
	return v, ok
}

// loadTargetConfig reads path as YAML into a targetConfig. An empty path
// returns an empty config rather than an error, so --target-config is
// optional on every subcommand that accepts it.
func loadTargetConfig(path string) (*targetConfig, error) {
	cfg := &targetConfig{Build: map[string]collab.PropertyValue{}, Host: map[string]collab.PropertyValue{}}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Build == nil {
		cfg.Build = map[string]collab.PropertyValue{}
	}
	if cfg.Host == nil {
		cfg.Host = map[string]collab.PropertyValue{}
	}
	return cfg, nil
}
