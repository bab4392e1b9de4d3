package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatWide  OutputFormat = "wide"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

var validOutputFormats = []OutputFormat{OutputFormatTable, OutputFormatWide, OutputFormatJSON, OutputFormatYAML}

// ValidateOutputFormat rejects formats the printer cannot render.
func ValidateOutputFormat(format string) error {
	for _, f := range validOutputFormats {
		if OutputFormat(format) == f {
			return nil
		}
	}
	names := make([]string, len(validOutputFormats))
	for i, f := range validOutputFormats {
		names[i] = string(f)
	}
	return fmt.Errorf("unsupported output format %q (valid: %s)", format, strings.Join(names, ", "))
}

// CommandFlags holds the common flag values used by commands that print
// results from the book API.
type CommandFlags struct {
	// OutputFormat specifies the desired output format (table, wide, json, yaml)
	OutputFormat string
	// NoHeaders suppresses the header row in table output
	NoHeaders bool
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
	// Template renders each result through a Go template instead
	Template string
}

// RegisterCommonFlags registers the output flags on cmd.
//
// The registered flags are:
//   - --output/-o: Output format (table, wide, json, yaml), default: "table"
//   - --no-headers: Suppress header row in table output
//   - --quiet/-q: Suppress non-essential output
//   - --template: Go template with sprig functions, overrides --output
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, wide, json, yaml)")
	cmd.PersistentFlags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&flags.Template, "template", "", "Go template (sprig functions available) applied to each book")
}

// Validate checks flag values before any request is made.
func (f *CommandFlags) Validate() error {
	return ValidateOutputFormat(f.OutputFormat)
}
