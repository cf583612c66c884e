package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitrone/spilltag/internal/cmd"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spilltag",
		Short:         "spilltag - tag editor for CloudSpill galleries",
		Long:          "spilltag edits the tags of CloudSpill gallery items from the terminal, one item or a whole selection at a time.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.EditCmd())
	root.AddCommand(cmd.TagsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}
