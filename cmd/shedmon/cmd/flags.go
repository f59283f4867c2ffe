package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		store    string
		database string
		host     string
		logLevel string
		types    string
		output   string
		cpuProf  bool
	}
	repo struct {
		owner       string
		name        string
		repoType    string
		description string
		toolShed    string
		path        string
		email       string
	}
	history struct {
		path    string
		message string
	}
	metadata struct {
		path        string
		ancestor    string
		current     string
		concurrency int
		debounce    time.Duration
		metricsAddr string
	}
	snapshot struct {
		changeset string
		from      string
		to        string
	}
	doc struct {
		docTarget string
		docFormat string
	}
}

var shedmonFlags = flagsT{}

// output formats
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func addStoreFlag(cmd *cobra.Command) string {
	store := "store"
	cmd.PersistentFlags().StringVar(&shedmonFlags.root.store, store, "", "The root directory of the local object store (defaults to .shedmon)")
	return store
}

func addDatabaseFlag(cmd *cobra.Command) string {
	database := "database"
	cmd.PersistentFlags().StringVar(&shedmonFlags.root.database, database, "",
		"The path to a SQLite database holding metadata snapshots. Snapshots are kept in the object store when empty")
	return database
}

func addHostFlag(cmd *cobra.Command) string {
	host := "host"
	cmd.PersistentFlags().StringVar(&shedmonFlags.root.host, host, "", "The tool shed host served, used to build tool guids")
	return host
}

func addLogLevelFlag(cmd *cobra.Command) string {
	logLevel := "loglevel"
	cmd.PersistentFlags().StringVar(&shedmonFlags.root.logLevel, logLevel, "", "The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug")
	return logLevel
}

func addTypesFlag(cmd *cobra.Command) string {
	types := "types"
	cmd.PersistentFlags().StringVar(&shedmonFlags.root.types, types, "", "A TOML or YAML file declaring repository types")
	return types
}

func addOutputFlag(cmd *cobra.Command) string {
	output := "output"
	cmd.PersistentFlags().StringVarP(&shedmonFlags.root.output, output, "o", outputText, "The output format: text, json or yaml")
	return output
}

func addCPUProfFlag(cmd *cobra.Command) string {
	cpuProf := "cpuprof"
	cmd.PersistentFlags().BoolVar(&shedmonFlags.root.cpuProf, cpuProf, false, "Toggles cpu profiling")
	return cpuProf
}

func addOwnerFlag(cmd *cobra.Command) string {
	owner := "owner"
	cmd.Flags().StringVar(&shedmonFlags.repo.owner, owner, "", "The owner of the repository")
	return owner
}

func addRepoNameFlag(cmd *cobra.Command) string {
	name := "name"
	cmd.Flags().StringVarP(&shedmonFlags.repo.name, name, "n", "", "The name of the repository")
	return name
}

func addRepoTypeFlag(cmd *cobra.Command) string {
	repoType := "type"
	cmd.Flags().StringVar(&shedmonFlags.repo.repoType, repoType, "", "The type of the repository (defaults to unrestricted)")
	return repoType
}

func addRepoDescription(cmd *cobra.Command) string {
	description := "description"
	cmd.Flags().StringVar(&shedmonFlags.repo.description, description, "", "The description for the repository")
	return description
}

func addToolShedFlag(cmd *cobra.Command) string {
	toolShed := "toolshed"
	cmd.Flags().StringVar(&shedmonFlags.repo.toolShed, toolShed, "", "The tool shed the repository comes from")
	return toolShed
}

func addClonePathFlag(cmd *cobra.Command) string {
	path := "clone"
	cmd.Flags().StringVar(&shedmonFlags.repo.path, path, "", "The path to a local git clone holding the history of the repository")
	return path
}

func addEmailFlag(cmd *cobra.Command) string {
	email := "email"
	cmd.Flags().StringVar(&shedmonFlags.repo.email, email, "", "The email of the owner, when registered with the repository")
	return email
}

func addHistoryPathFlag(cmd *cobra.Command) string {
	path := "path"
	cmd.Flags().StringVar(&shedmonFlags.history.path, path, "", "The path to the directory to import as a new revision")
	return path
}

func addCommitMessageFlag(cmd *cobra.Command) string {
	message := "message"
	cmd.Flags().StringVarP(&shedmonFlags.history.message, message, "m", "", "The message describing the new revision")
	return message
}

func addMetadataPathFlag(cmd *cobra.Command) string {
	path := "path"
	cmd.Flags().StringVar(&shedmonFlags.metadata.path, path, "", "The path to a directory holding a repository tree")
	return path
}

func addAncestorFlag(cmd *cobra.Command) string {
	ancestor := "ancestor"
	cmd.Flags().StringVar(&shedmonFlags.metadata.ancestor, ancestor, "", "A YAML or JSON file with the ancestor metadata")
	return ancestor
}

func addCurrentFlag(cmd *cobra.Command) string {
	current := "current"
	cmd.Flags().StringVar(&shedmonFlags.metadata.current, current, "", "A YAML or JSON file with the current metadata")
	return current
}

func addConcurrencyFlag(cmd *cobra.Command) string {
	concurrency := "concurrency"
	cmd.Flags().IntVar(&shedmonFlags.metadata.concurrency, concurrency, 0, "The maximum number of repositories reconciled concurrently (defaults to 2 x #cpus)")
	return concurrency
}

func addDebounceFlag(cmd *cobra.Command) string {
	debounce := "debounce"
	cmd.Flags().DurationVar(&shedmonFlags.metadata.debounce, debounce, 2*time.Second, "The quiet period after a change before reconciling")
	return debounce
}

func addMetricsAddrFlag(cmd *cobra.Command) string {
	addr := "metrics-addr"
	cmd.Flags().StringVar(&shedmonFlags.metadata.metricsAddr, addr, "", "Serves prometheus metrics on this address (e.g. :9090) when set")
	return addr
}

func addChangesetFlag(cmd *cobra.Command) string {
	changeset := "changeset"
	cmd.Flags().StringVar(&shedmonFlags.snapshot.changeset, changeset, "", "The changeset revision")
	return changeset
}

func addFromFlag(cmd *cobra.Command) string {
	from := "from"
	cmd.Flags().StringVar(&shedmonFlags.snapshot.from, from, "", "The changeset revision of the older snapshot")
	return from
}

func addToFlag(cmd *cobra.Command) string {
	to := "to"
	cmd.Flags().StringVar(&shedmonFlags.snapshot.to, to, "", "The changeset revision of the newer snapshot")
	return to
}

func addTargetFlag(cmd *cobra.Command) string {
	target := "target-dir"
	cmd.Flags().StringVar(&shedmonFlags.doc.docTarget, target, ".", "The target directory for the generated documentation")
	return target
}

func addDocFormatFlag(cmd *cobra.Command) string {
	format := "format"
	cmd.Flags().StringVar(&shedmonFlags.doc.docFormat, format, docMarkdown, "The documentation format: markdown or man")
	return format
}

func requireFlags(cmd *cobra.Command, flags ...string) {
	for _, flag := range flags {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			wrapFatalln("marking required flag "+flag, err)
		}
	}
}
