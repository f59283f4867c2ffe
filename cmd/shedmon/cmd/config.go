package cmd

import (
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// keep names of fields the same as the serialized names
	Store    string `json:"store" yaml:"store"`       // Root directory of the local object store
	Database string `json:"database" yaml:"database"` // SQLite database for snapshots. Snapshots go to the object store when empty
	Host     string `json:"host" yaml:"host"`         // Tool shed served host
	LogLevel string `json:"loglevel" yaml:"loglevel"` // Log level
	Types    string `json:"types" yaml:"types"`       // Optional TOML or YAML file with repository types
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// setShedmonParams fills flags which have not been set on the command line
func (c *CLIConfig) setShedmonParams(flags *flagsT) {
	if flags.root.store == "" {
		flags.root.store = c.Store
	}
	if flags.root.database == "" {
		flags.root.database = c.Database
	}
	if flags.root.host == "" {
		flags.root.host = c.Host
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
	if flags.root.types == "" {
		flags.root.types = c.Types
	}
}
