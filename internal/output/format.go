package output

import "strings"

// OutputFormat specifies how a component's configuration is printed.
type OutputFormat string

const (
	// FormatYAML prints the merged tree as ordered YAML.
	FormatYAML OutputFormat = "yaml"

	// FormatJSON prints the merged tree as JSON.
	FormatJSON OutputFormat = "json"

	// FormatC prints the generated initargs.c source.
	FormatC OutputFormat = "c"

	// FormatTable prints every leaf of the merged tree as a table row.
	FormatTable OutputFormat = "table"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// Valid checks if the output format is known.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatYAML, FormatJSON, FormatC, FormatTable:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses a format name. The second result reports
// whether the name was recognized.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, true
	case "json":
		return FormatJSON, true
	case "c":
		return FormatC, true
	case "table":
		return FormatTable, true
	default:
		return OutputFormat(s), false
	}
}

// ValidFormats returns a slice of valid output format strings.
func ValidFormats() []string {
	return []string{"yaml", "json", "c", "table"}
}
