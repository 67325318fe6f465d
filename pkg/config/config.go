// Package config loads YAML configuration files with environment variable
// expansion (${VAR} and $VAR forms).
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that can check themselves
// after loading.
type Validator interface {
	Validate() error
}

// Load reads filename, expands environment variables in its contents,
// unmarshals the YAML into target, and runs target's Validate method when it
// has one. target keeps any values set before the call that the file does
// not mention, so callers can pre-fill defaults.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("config: parse %s: %w", filename, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: validate: %w", err)
		}
	}

	return nil
}

// LoadWithDefaults loads filename, falling back to defaultFile when filename
// does not exist.
func LoadWithDefaults[T any](filename, defaultFile string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if defaultFile != "" {
			return Load(defaultFile, target)
		}
		return fmt.Errorf("config: file not found: %s", filename)
	}
	return Load(filename, target)
}

// MustLoad is Load that panics on failure. Intended for program startup
// paths where a bad config file is unrecoverable.
func MustLoad[T any](filename string, target *T) {
	if err := Load(filename, target); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
