package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/toolshed/shedmon/pkg/model"
	"gopkg.in/yaml.v2"
)

type comparison struct {
	Comparison  string `json:"comparison" yaml:"comparison"`
	ExtendsSpan bool   `json:"extends_span" yaml:"extends_span"`
}

// readMetadata reads a metadata document, either as produced by "metadata generate" or bare
func readMetadata(fs afero.Fs, pth string) (model.Metadata, error) {
	content, err := afero.ReadFile(fs, pth)
	if err != nil {
		return model.Metadata{}, err
	}

	// JSON documents are valid YAML
	var wrapped generated
	if err = yaml.Unmarshal(content, &wrapped); err == nil && !wrapped.Metadata.IsEmpty() {
		return wrapped.Metadata, nil
	}
	var metadata model.Metadata
	if err = yaml.Unmarshal(content, &metadata); err != nil {
		return model.Metadata{}, fmt.Errorf("invalid metadata in %s: %w", pth, err)
	}
	return metadata, nil
}

var metadataCompare = &cobra.Command{
	Use:   "compare",
	Short: "Compare two metadata documents",
	Long: `Compare the metadata of an ancestor revision with the metadata of a current revision.

The outcome is one of: equal, subset, not equal and not subset, no metadata.
Only "not equal and not subset" starts a new snapshot.`,
	Example: `% shedmon metadata compare --ancestor v1.json --current v2.json
subset`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		fs := afero.NewOsFs()
		ancestor, err := readMetadata(fs, shedmonFlags.metadata.ancestor)
		if err != nil {
			wrapFatalln("reading ancestor metadata", err)
			return
		}
		current, err := readMetadata(fs, shedmonFlags.metadata.current)
		if err != nil {
			wrapFatalln("reading current metadata", err)
			return
		}

		result := env.comparator().Compare(ancestor, current)
		if shedmonFlags.root.output != outputText {
			mustRender(cmd.OutOrStdout(), comparison{Comparison: result.String(), ExtendsSpan: result.ExtendsSpan()}, nil, nil)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), result)
	},
}

func init() {
	requireFlags(metadataCompare,
		addAncestorFlag(metadataCompare),
		addCurrentFlag(metadataCompare),
	)
	metadataCmd.AddCommand(metadataCompare)
}
