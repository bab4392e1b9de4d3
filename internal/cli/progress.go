package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RunWithSpinner shows a spinner on w while fn runs. Quiet runs fn bare.
func RunWithSpinner(w io.Writer, quiet bool, suffix string, fn func() error) error {
	if quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()

	err := fn()
	s.Stop()

	if err != nil {
		fmt.Fprintf(w, "%s\n", text.FgRed.Sprint("❌ "+suffix+" failed"))
	}
	return err
}
