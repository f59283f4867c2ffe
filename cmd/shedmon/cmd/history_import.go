package cmd

import (
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/toolshed/shedmon/pkg/history"
)

var historyImport = &cobra.Command{
	Use:   "import",
	Short: "Import a directory as a new revision",
	Long: `Import the content of a directory as the new tip revision of a repository.

Hidden files and directories (e.g. .git, .hg) are not imported.`,
	Example: `% shedmon history import --owner devteam --name bwa_wrappers --path ./bwa_wrappers -m "bump bwa to 0.7.17"
1:5c0a1b7e9b2f4d... , 2024-03-05 14:01:18.181535 +0000 UTC , bump bwa to 0.7.17`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		repo := env.mustRepo()
		if repo.Path != "" {
			wrapFatalln("repository "+repo.FullName()+" reads its history from the git clone at "+repo.Path, nil)
			return
		}

		revision, err := env.history.Commit(ctx, repo, afero.NewOsFs(), shedmonFlags.history.path,
			history.CommitMessage(shedmonFlags.history.message),
		)
		if err != nil {
			wrapFatalln("importing revision", err)
			return
		}
		mustRender(cmd.OutOrStdout(), revision, []interface{}{revision}, revisionTemplate)
	},
}

func init() {
	requireFlags(historyImport,
		addOwnerFlag(historyImport),
		addRepoNameFlag(historyImport),
		addHistoryPathFlag(historyImport),
	)
	addCommitMessageFlag(historyImport)
	historyCmd.AddCommand(historyImport)
}
