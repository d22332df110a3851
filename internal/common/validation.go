package common

import (
	"fmt"
	"slices"
)

// ValidateOutputFormat checks format against the configured formats. An
// empty list allows every format the registry knows.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if format == "" {
		return fmt.Errorf("output format cannot be empty")
	}
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}
