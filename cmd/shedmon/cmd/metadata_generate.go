package cmd

import (
	"context"
	"errors"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/registry/status"
)

type generated struct {
	Metadata     model.Metadata      `json:"metadata" yaml:"metadata"`
	InvalidFiles []model.InvalidFile `json:"invalid_files,omitempty" yaml:"invalid_files,omitempty"`
}

var metadataGenerate = &cobra.Command{
	Use:   "generate",
	Short: "Generate the metadata of a directory",
	Long: `Generate the metadata of a repository tree checked out in some directory, without persisting anything.

Tool guids are built with the owner and name of the repository, which need not be registered.
Repository dependencies are validated against the registered repositories.`,
	Example: `% shedmon metadata generate --owner devteam --name bwa_wrappers --path ./bwa_wrappers -o json > metadata.json`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		repo, err := env.repo()
		if err != nil {
			if !errors.Is(err, status.ErrRepoNotFound) {
				wrapFatalln("retrieving repository", err)
				return
			}
			repo = model.RepoDescriptor{Owner: shedmonFlags.repo.owner, Name: shedmonFlags.repo.name}
		}

		metadata, invalid, err := env.generator().Generate(ctx, afero.NewOsFs(), shedmonFlags.metadata.path, repo, "")
		if err != nil {
			wrapFatalln("generating metadata", err)
			return
		}
		// text output is YAML
		mustRender(cmd.OutOrStdout(), generated{Metadata: metadata, InvalidFiles: invalid}, nil, nil)
	},
}

func init() {
	requireFlags(metadataGenerate,
		addOwnerFlag(metadataGenerate),
		addRepoNameFlag(metadataGenerate),
		addMetadataPathFlag(metadataGenerate),
	)
	metadataCmd.AddCommand(metadataGenerate)
}
