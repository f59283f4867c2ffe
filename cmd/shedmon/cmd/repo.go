package cmd

import (
	"github.com/spf13/cobra"
)

// repoCmd represents the repo related commands
var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Commands to manage repos",
	Long: `Commands to manage the tool shed repositories known to shedmon.

A repository is owned by a user, and has a type: repositories of some types only ever track their tip revision.
`,
}

func init() {
	rootCmd.AddCommand(repoCmd)
}
