package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var metadataReset = &cobra.Command{
	Use:   "reset",
	Short: "Reset the metadata of a repo",
	Long: `Walk the whole history of a repository and reconcile its metadata snapshots.

Invalid files found while inspecting revisions are reported, but do not stop the reconciliation.`,
	Example: `% shedmon metadata reset --owner devteam --name bwa_wrappers
devteam/bwa_wrappers , flushed=2 , created=1 , updated=1 , deleted=0 , skipped=0 , invalid_files=1
5c0a1b7e9b2f4d... , tools/bwa.xml , Error parsing XML: XML syntax error on line 3: unexpected EOF`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		result, err := env.reconciler().Reconcile(ctx, env.mustRepo())
		if err != nil {
			wrapFatalln("resetting metadata", err)
			return
		}
		if err = renderResult(cmd.OutOrStdout(), result); err != nil {
			wrapFatalln("rendering output", err)
		}
	},
}

func init() {
	requireFlags(metadataReset,
		addOwnerFlag(metadataReset),
		addRepoNameFlag(metadataReset),
	)
	metadataCmd.AddCommand(metadataReset)
}
