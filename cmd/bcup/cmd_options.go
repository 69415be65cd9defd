package main

import (
	"github.com/spf13/cobra"

	"github.com/bcup/bcup/internal/options"
)

func newOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print list of extended options",
		Long: `
The "options" command prints a list of extended options. They are set with
"-o key=value", for example "-o telegram.timeout=1m".

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		Hidden:            true,
		DisableAutoGenTag: true,
		Run: func(_ *cobra.Command, _ []string) {
			Printf("All Extended Options:\n")
			var maxLen int
			for _, opt := range options.List() {
				if l := len(opt.Namespace + "." + opt.Name); l > maxLen {
					maxLen = l
				}
			}
			for _, opt := range options.List() {
				Printf("  %*s  %s\n", -maxLen, opt.Namespace+"."+opt.Name, opt.Text)
			}
		},
	}
	return cmd
}
