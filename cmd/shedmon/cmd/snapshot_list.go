package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var snapshotList = &cobra.Command{
	Use:   "list",
	Short: "List the snapshots of a repo",
	Long:  `List the metadata snapshots of a repository, in changelog order`,
	Example: `% shedmon snapshot list --owner devteam --name cat
8d4a9cd2e2b4 , 2A0DSbkE6Rn0nLUkjNQ2q7vZhIY , downloadable=true , tools=1 , repository_dependencies=0 , tool_dependencies=0 , data_managers=0`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		repo := env.mustRepo()
		snapshots, err := env.snapshots.List(ctx, repo.ID)
		if err != nil {
			wrapFatalln("listing snapshots", err)
			return
		}

		// snapshot stores have no notion of order: follow the changelog
		changelog, err := env.provider.Changelog(ctx, repo)
		if err != nil {
			wrapFatalln("retrieving history", err)
			return
		}
		byChangeset := snapshots.ByChangeset()
		ordered := make([]interface{}, 0, len(snapshots))
		for _, revision := range changelog {
			if sd, ok := byChangeset[revision.ID]; ok {
				ordered = append(ordered, sd)
				delete(byChangeset, revision.ID)
			}
		}
		// snapshots citing unknown changesets come last
		for _, sd := range snapshots {
			if _, ok := byChangeset[sd.ChangesetRevision]; ok {
				ordered = append(ordered, sd)
			}
		}
		mustRender(cmd.OutOrStdout(), ordered, ordered, snapshotTemplate)
	},
}

func init() {
	requireFlags(snapshotList,
		addOwnerFlag(snapshotList),
		addRepoNameFlag(snapshotList),
	)
	snapshotCmd.AddCommand(snapshotList)
}
