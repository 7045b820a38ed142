package main

import (
	"github.com/spf13/cobra"
)

// newTypeRootCmd builds the cobra command tree rooted at "type", the
// HLA-genotyping subcommand. The rest of hlatype's CLI surface stays on
// the flag.FlagSet style used throughout main.go; "type" has enough
// flags (graph construction, statistic selector, reporting) that cobra's
// named/grouped flags read far better than a flat flag.FlagSet would.
func newTypeRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hlatype",
		Short:         "HLA genotyping by read alignment against an allele graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTypeCmd())
	return root
}

// runTypeCommand runs the "type" subcommand with args as its own
// argv[1:] (i.e. NOT including the leading "type" token), returning
// whatever error RunE produced so main.go can map it to a process exit
// code.
func runTypeCommand(args []string) error {
	root := newTypeRootCmd()
	root.SetArgs(append([]string{"type"}, args...))
	return root.Execute()
}
