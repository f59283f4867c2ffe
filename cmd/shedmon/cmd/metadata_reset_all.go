package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toolshed/shedmon/pkg/core"
)

type batchSummary struct {
	Succeeded    int               `json:"succeeded" yaml:"succeeded"`
	Failed       int               `json:"failed" yaml:"failed"`
	InvalidFiles int               `json:"invalid_files" yaml:"invalid_files"`
	Duration     string            `json:"duration" yaml:"duration"`
	Failures     map[string]string `json:"failures,omitempty" yaml:"failures,omitempty"`
	Results      []*core.Result    `json:"results,omitempty" yaml:"results,omitempty"`
}

var metadataResetAll = &cobra.Command{
	Use:   "reset-all",
	Short: "Reset the metadata of all repos",
	Long: `Reset the metadata of all repositories, optionally restricted to some owner.

Repositories are reconciled concurrently. A failed repository does not stop the others:
the command reports how many repositories succeeded and failed, and exits with a non-zero status on failures.`,
	Example: `% shedmon metadata reset-all --concurrency 8
reconciled 41 repositories, 1 failed, 3 invalid files in 12 seconds
devteam/bwa_wrappers: cannot persist snapshot: database is locked`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		env := mustEnvironment(ctx)
		defer env.Close()

		repos, err := env.catalog.ListRepos(shedmonFlags.repo.owner)
		if err != nil {
			wrapFatalln("listing repositories", err)
			return
		}

		report, _ := core.ReconcileAll(ctx, env.reconciler(), repos,
			core.ConcurrentReconcile(shedmonFlags.metadata.concurrency),
			core.WithLogger(env.l),
		)

		summary := batchSummary{
			Succeeded:    report.Succeeded,
			Failed:       report.Failed,
			InvalidFiles: report.InvalidFiles(),
			Duration:     units.HumanDuration(report.Duration),
			Failures:     make(map[string]string, report.Failed),
		}
		for _, failure := range report.Failures() {
			summary.Failures[failure.Repository.FullName()] = failure.Err.Error()
		}
		reported := make(map[*core.RepositoryReport]bool, len(repos))
		for _, repo := range repos {
			if r, ok := report.Report(repo); ok && r.Result != nil && !reported[r] {
				reported[r] = true
				summary.Results = append(summary.Results, r.Result)
			}
		}

		out := cmd.OutOrStdout()
		if shedmonFlags.root.output != outputText {
			mustRender(out, summary, nil, nil)
		} else {
			failed := color.New(color.FgGreen).SprintFunc()
			if report.Failed > 0 {
				failed = color.New(color.FgRed).SprintFunc()
			}
			fmt.Fprintf(out, "reconciled %s repositories, %s failed, %d invalid files in %s\n",
				color.GreenString("%d", summary.Succeeded),
				failed(summary.Failed),
				summary.InvalidFiles,
				summary.Duration,
			)
			for _, failure := range report.Failures() {
				fmt.Fprintf(out, "%s: %v\n", failure.Repository.FullName(), failure.Err)
			}
		}

		if report.Failed > 0 {
			wrapFatalWithCodef(1, "%d repositories could not be reconciled", report.Failed)
		}
	},
}

func init() {
	addOwnerFlag(metadataResetAll)
	addConcurrencyFlag(metadataResetAll)
	metadataCmd.AddCommand(metadataResetAll)
}
