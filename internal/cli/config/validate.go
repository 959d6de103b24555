package config

import (
	"fmt"
	"strings"
)

// OutputModes lists the accepted values of the output key.
var OutputModes = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Input != "" && c.Dataset != "" {
		return fmt.Errorf("input and dataset are mutually exclusive")
	}

	valid := false
	for _, m := range OutputModes {
		if c.OutputFormat == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid output mode %q (expected one of: %s)", c.OutputFormat, strings.Join(OutputModes, ", "))
	}

	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve port %d", c.Serve.Port)
	}
	return nil
}
