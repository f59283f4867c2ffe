package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var historyLog = &cobra.Command{
	Use:   "log",
	Short: "List the revisions of a repo",
	Long:  `List the revisions of a repository, oldest first`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		changelog, err := env.provider.Changelog(ctx, env.mustRepo())
		if err != nil {
			wrapFatalln("retrieving history", err)
			return
		}
		items := make([]interface{}, 0, len(changelog))
		for _, revision := range changelog {
			items = append(items, revision)
		}
		mustRender(cmd.OutOrStdout(), changelog, items, revisionTemplate)
	},
}

func init() {
	requireFlags(historyLog,
		addOwnerFlag(historyLog),
		addRepoNameFlag(historyLog),
	)
	historyCmd.AddCommand(historyLog)
}
