package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the Pond client. It
// registers the query and inject subcommands.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "pond",
		Short: "Pond client commands",
	}
	root.AddCommand(NewQueryCommand())
	root.AddCommand(NewInjectCommand())
	return root
}
