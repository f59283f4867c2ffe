package cmd

import (
	"github.com/spf13/cobra"
)

// historyCmd represents the history related commands
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Commands to manage the history of repos",
	Long: `Commands to manage the linear history of repositories.

Repositories created with a local git clone read their history from git. All other repositories keep their
revisions in the object store, where new revisions are imported from directories.
`,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
