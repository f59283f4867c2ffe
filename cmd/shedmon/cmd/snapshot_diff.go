package cmd

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

type snapshotDiff struct {
	From        string `json:"from" yaml:"from"`
	To          string `json:"to" yaml:"to"`
	Comparison  string `json:"comparison" yaml:"comparison"`
	ExtendsSpan bool   `json:"extends_span" yaml:"extends_span"`
	Diff        string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Diff the metadata of two snapshots",
	Long: `Show a unified diff between the metadata of two snapshots of a repository,
along with the outcome of comparing them.`,
	Example: `% shedmon snapshot diff --owner devteam --name cat --from 8d4a9cd2e2b4 --to 0b6f1e2c7aa1
--- 8d4a9cd2e2b4
+++ 0b6f1e2c7aa1
@@ -1,5 +1,5 @@
...
comparison: not equal and not subset`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		repo := env.mustRepo()
		from, err := env.snapshots.Find(ctx, repo.ID, shedmonFlags.snapshot.from)
		if err != nil {
			wrapFatalln("retrieving snapshot "+shedmonFlags.snapshot.from, err)
			return
		}
		to, err := env.snapshots.Find(ctx, repo.ID, shedmonFlags.snapshot.to)
		if err != nil {
			wrapFatalln("retrieving snapshot "+shedmonFlags.snapshot.to, err)
			return
		}

		a, err := yaml.Marshal(from.Metadata)
		if err != nil {
			wrapFatalln("rendering metadata", err)
			return
		}
		b, err := yaml.Marshal(to.Metadata)
		if err != nil {
			wrapFatalln("rendering metadata", err)
			return
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(a)),
			B:        difflib.SplitLines(string(b)),
			FromFile: from.ChangesetRevision,
			ToFile:   to.ChangesetRevision,
			Context:  3,
		})
		if err != nil {
			wrapFatalln("computing diff", err)
			return
		}

		result := env.comparator().Compare(from.Metadata, to.Metadata)
		out := cmd.OutOrStdout()
		if shedmonFlags.root.output != outputText {
			mustRender(out, snapshotDiff{
				From:        from.ChangesetRevision,
				To:          to.ChangesetRevision,
				Comparison:  result.String(),
				ExtendsSpan: result.ExtendsSpan(),
				Diff:        diff,
			}, nil, nil)
			return
		}
		fmt.Fprint(out, diff)
		fmt.Fprintf(out, "comparison: %v\n", result)
	},
}

func init() {
	requireFlags(snapshotDiffCmd,
		addOwnerFlag(snapshotDiffCmd),
		addRepoNameFlag(snapshotDiffCmd),
		addFromFlag(snapshotDiffCmd),
		addToFlag(snapshotDiffCmd),
	)
	snapshotCmd.AddCommand(snapshotDiffCmd)
}
