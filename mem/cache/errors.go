package cache

import "fmt"

// ConfigError reports a cache or hierarchy configuration that cannot be
// built.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}
