package cmd

import (
	"fmt"
	"io"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/toolshed/shedmon/pkg/core"
)

// metadataCmd represents the metadata related commands
var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Commands to manage repository metadata",
	Long: `Commands to generate, compare and reconcile the metadata of repositories.

Resetting the metadata of a repository walks its whole history: revisions with compatible metadata
are collapsed into one snapshot, orphaned snapshots are removed and tool versions are recomputed.
`,
}

var resultTemplate = template.Must(template.New("result").Parse(
	`{{.Repository.Owner}}/{{.Repository.Name}} , flushed={{len .Flushed}} , created={{.Created}} , updated={{.Updated}} , ` +
		`deleted={{len .Deleted}} , skipped={{len .Skipped}} , invalid_files={{len .InvalidFiles}}` + "\n"))

func renderResult(w io.Writer, result *core.Result) error {
	if shedmonFlags.root.output != outputText {
		return render(w, result, nil, nil)
	}
	if err := resultTemplate.Execute(w, result); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	for _, file := range result.InvalidFiles {
		if err := invalidFileTemplate.Execute(w, file); err != nil {
			return fmt.Errorf("executing template: %w", err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(metadataCmd)
}
