package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

type toolVersions struct {
	Changeset    string            `json:"changeset" yaml:"changeset"`
	ToolVersions map[string]string `json:"tool_versions" yaml:"tool_versions"`
}

var metadataToolVersions = &cobra.Command{
	Use:   "tool-versions",
	Short: "Reset the tool versions of a repo",
	Long: `Recompute the tool versions of all downloadable revisions of a repository, and print them.

Each tool guid maps to the guid of the previous version of the same tool, or to the tool id for its first version.`,
	Example: `% shedmon metadata tool-versions --owner devteam --name cat
5c0a1b7e9b2f4d...
  toolshed.example.org/repos/devteam/cat/cat1/2.0 -> toolshed.example.org/repos/devteam/cat/cat1/1.0`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		repo := env.mustRepo()
		if err := env.reconciler().ResetToolVersions(ctx, repo); err != nil {
			wrapFatalln("resetting tool versions", err)
			return
		}

		changelog, err := env.provider.Changelog(ctx, repo)
		if err != nil {
			wrapFatalln("retrieving history", err)
			return
		}
		snapshots, err := env.snapshots.List(ctx, repo.ID)
		if err != nil {
			wrapFatalln("listing snapshots", err)
			return
		}
		byChangeset := make(map[string]map[string]string, len(snapshots))
		for _, sd := range snapshots {
			if len(sd.ToolVersions) > 0 {
				byChangeset[sd.ChangesetRevision] = sd.ToolVersions
			}
		}

		versions := make([]toolVersions, 0, len(byChangeset))
		for _, revision := range changelog {
			if v, ok := byChangeset[revision.ID]; ok {
				versions = append(versions, toolVersions{Changeset: revision.ID, ToolVersions: v})
			}
		}

		out := cmd.OutOrStdout()
		if shedmonFlags.root.output != outputText {
			mustRender(out, versions, nil, nil)
			return
		}
		for _, v := range versions {
			fmt.Fprintln(out, v.Changeset)
			guids := make([]string, 0, len(v.ToolVersions))
			for guid := range v.ToolVersions {
				guids = append(guids, guid)
			}
			sort.Strings(guids)
			for _, guid := range guids {
				fmt.Fprintf(out, "  %s -> %s\n", guid, v.ToolVersions[guid])
			}
		}
	},
}

func init() {
	requireFlags(metadataToolVersions,
		addOwnerFlag(metadataToolVersions),
		addRepoNameFlag(metadataToolVersions),
	)
	metadataCmd.AddCommand(metadataToolVersions)
}
