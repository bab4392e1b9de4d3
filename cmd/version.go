package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd prints the build version. An unset version reads "dev".
func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the readinglist version",
		Long: `Print the readinglist build version.

Use --short in scripts to print the bare version number.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := GetVersion()
			if v == "" {
				v = "dev"
			}
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "readinglist version %s\n", v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
