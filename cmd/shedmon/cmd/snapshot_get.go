package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var snapshotGet = &cobra.Command{
	Use:   "get",
	Short: "Get the snapshot at a changeset",
	Long:  `Print the metadata snapshot recorded at a changeset revision of a repository`,
	Example: `% shedmon snapshot get --owner devteam --name cat --changeset 8d4a9cd2e2b4
id: 2A0DSbkE6Rn0nLUkjNQ2q7vZhIY
changeset_revision: 8d4a9cd2e2b4
...`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		repo := env.mustRepo()
		sd, err := env.snapshots.Find(ctx, repo.ID, shedmonFlags.snapshot.changeset)
		if err != nil {
			wrapFatalln("retrieving snapshot", err)
			return
		}
		mustRender(cmd.OutOrStdout(), sd, nil, nil)
	},
}

func init() {
	requireFlags(snapshotGet,
		addOwnerFlag(snapshotGet),
		addRepoNameFlag(snapshotGet),
		addChangesetFlag(snapshotGet),
	)
	snapshotCmd.AddCommand(snapshotGet)
}
