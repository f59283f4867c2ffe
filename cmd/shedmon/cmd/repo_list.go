package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var repoList = &cobra.Command{
	Use:   "list",
	Short: "List repos",
	Long:  `List repos that have been created, optionally restricted to some owner`,
	Example: `% shedmon repo list --owner devteam
devteam/bwa_wrappers , unrestricted , 2A0D4QS5zMmpzbwDuBPFDgXDv4O , 2024-03-05 14:01:18.181535 +0000 UTC`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		repos, err := env.catalog.ListRepos(shedmonFlags.repo.owner)
		if err != nil {
			wrapFatalln("listing repositories", err)
			return
		}
		items := make([]interface{}, 0, len(repos))
		for _, repo := range repos {
			items = append(items, repo)
		}
		mustRender(cmd.OutOrStdout(), repos, items, repoTemplate)
	},
}

func init() {
	addOwnerFlag(repoList)
	repoCmd.AddCommand(repoList)
}
