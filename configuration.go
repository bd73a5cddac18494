package autoreg

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration is the read-only settings tree handed to every Registrar.
// Keys are dotted paths into nested sections, e.g. "database.pool.size".
type Configuration interface {
	// Lookup returns the raw value stored at key.
	Lookup(key string) (any, bool)

	// Decode decodes the value stored at key into out. An empty key decodes
	// the whole tree. A missing key leaves out untouched.
	Decode(key string, out any) error
}

type mapConfiguration struct {
	values map[string]any
}

// NewConfiguration wraps values as a Configuration. A nil map is an empty
// configuration.
func NewConfiguration(values map[string]any) Configuration {
	if values == nil {
		values = map[string]any{}
	}
	return &mapConfiguration{values: values}
}

// ParseConfiguration decodes a YAML document into a Configuration.
func ParseConfiguration(data []byte) (Configuration, error) {
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return NewConfiguration(values), nil
}

func (c *mapConfiguration) Lookup(key string) (any, bool) {
	if key == "" {
		return c.values, true
	}

	var current any = c.values
	for _, part := range strings.Split(key, ".") {
		section, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = section[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (c *mapConfiguration) Decode(key string, out any) error {
	value, ok := c.Lookup(key)
	if !ok {
		return nil
	}

	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// configurationOrEmpty treats a nil Configuration as empty.
func configurationOrEmpty(c Configuration) Configuration {
	if c == nil {
		return NewConfiguration(nil)
	}
	return c
}
