package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shedmon",
	Short: "shedmon maintains the metadata of tool shed repositories",
	Long: `shedmon walks the history of tool shed repositories and maintains their metadata snapshots.

Each repository revision is inspected for tools, repository dependencies, tool dependencies and data managers.
Revisions with compatible metadata are collapsed into a single snapshot, citing the most recent of them:
these are the installable revisions of a repository.
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if shedmonFlags.root.cpuProf {
			f, err := os.Create("cpu.prof")
			if err != nil {
				log.Fatal(err)
			}
			_ = pprof.StartCPUProfile(f)
		}
	},
	// upstream api note:  *PostRun functions aren't called in case of a panic() in Run
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shedmonFlags.root.cpuProf {
			pprof.StopCPUProfile()
		}
	},
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addStoreFlag(rootCmd)
	addDatabaseFlag(rootCmd)
	addHostFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addTypesFlag(rootCmd)
	addOutputFlag(rootCmd)
	addCPUProfFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("store", ".shedmon")
	viper.SetDefault("host", "localhost:9009")
	viper.SetDefault("loglevel", "info")
	if os.Getenv("SHEDMON_CONFIG") != "" {
		// Use config file from the env.
		viper.SetConfigFile(os.Getenv("SHEDMON_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.shedmon")
		viper.AddConfigPath("/etc/shedmon")
		viper.SetConfigName("shedmon")
	}

	viper.SetEnvPrefix("shedmon")
	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		wrapFatalln("invalid configuration", err)
		return
	}
	config.setShedmonParams(&shedmonFlags)
}
