package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/toolshed/shedmon/pkg/model"
)

var repoCreate = &cobra.Command{
	Use:   "create",
	Short: "Create a repo",
	Long: `Create a repository. Its owner is registered when not known yet.

The history of a repository is either imported with "shedmon history import", or read from a local git clone.`,
	Example: `% shedmon repo create --owner devteam --name bwa_wrappers --description "BWA wrappers"
% shedmon repo create --owner iuc --name package_samtools_0_1_19 --type tool_dependency_definition --clone ./samtools`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := mustEnvironment(ctx)
		defer env.Close()

		_, err := env.catalog.EnsureUser(ctx, model.UserDescriptor{
			Name:  shedmonFlags.repo.owner,
			Email: shedmonFlags.repo.email,
		})
		if err != nil {
			wrapFatalln("registering owner", err)
			return
		}

		repo, err := env.catalog.CreateRepo(ctx, model.RepoDescriptor{
			Owner:       shedmonFlags.repo.owner,
			Name:        shedmonFlags.repo.name,
			Type:        shedmonFlags.repo.repoType,
			Description: shedmonFlags.repo.description,
			ToolShed:    shedmonFlags.repo.toolShed,
			Path:        shedmonFlags.repo.path,
		})
		if err != nil {
			wrapFatalln("creating repository", err)
			return
		}
		mustRender(cmd.OutOrStdout(), repo, []interface{}{repo}, repoTemplate)
	},
}

func init() {
	requireFlags(repoCreate,
		addOwnerFlag(repoCreate),
		addRepoNameFlag(repoCreate),
	)
	addRepoTypeFlag(repoCreate)
	addRepoDescription(repoCreate)
	addToolShedFlag(repoCreate)
	addClonePathFlag(repoCreate)
	addEmailFlag(repoCreate)
	repoCmd.AddCommand(repoCreate)
}
