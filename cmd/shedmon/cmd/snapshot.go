package cmd

import (
	"github.com/spf13/cobra"
)

// snapshotCmd represents the commands to inspect metadata snapshots
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Commands to inspect metadata snapshots",
	Long: `Commands to inspect the metadata snapshots of a repository.

A snapshot records the metadata of a changeset revision. It stands for all the revisions
between the previous snapshot and its own changeset.
`,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
