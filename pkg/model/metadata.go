package model

import (
	"sort"
)

// Metadata is the structural fingerprint of one repository revision.
//
// A document with none of tools, repository dependencies, tool dependencies or data managers
// carries no metadata.
type Metadata struct {
	Tools                  []ToolRecord              `json:"tools,omitempty" yaml:"tools,omitempty"`
	RepositoryDependencies *RepositoryDependencies   `json:"repository_dependencies,omitempty" yaml:"repository_dependencies,omitempty"`
	ToolDependencies       map[string]ToolDependency `json:"tool_dependencies,omitempty" yaml:"tool_dependencies,omitempty"`
	DataManagers           map[string]DataManager    `json:"data_managers,omitempty" yaml:"data_managers,omitempty"`

	// side channels, never compared
	InvalidRepositoryDependencies *RepositoryDependencies   `json:"invalid_repository_dependencies,omitempty" yaml:"invalid_repository_dependencies,omitempty"`
	InvalidToolDependencies       map[string]ToolDependency `json:"invalid_tool_dependencies,omitempty" yaml:"invalid_tool_dependencies,omitempty"`
	InvalidTools                  []string                  `json:"invalid_tools,omitempty" yaml:"invalid_tools,omitempty"`
	_                             struct{}
}

// ToolRecord describes a tool declared by a revision
type ToolRecord struct {
	ID           string        `json:"id" yaml:"id"`
	GUID         string        `json:"guid" yaml:"guid"`
	Name         string        `json:"name" yaml:"name"`
	Version      string        `json:"version" yaml:"version"`
	ToolConfig   string        `json:"tool_config,omitempty" yaml:"tool_config,omitempty"`
	Requirements []Requirement `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	_            struct{}
}

// Requirement of a tool, as declared in its config
type Requirement struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Type    string `json:"type" yaml:"type"`
	_       struct{}
}

// RepositoryDependencies holds the repository dependency definitions of a revision
type RepositoryDependencies struct {
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []DependencyTuple `json:"repository_dependencies" yaml:"repository_dependencies"`
	_            struct{}
}

// ToolDependency describes a package (or environment) a tool dependency definition installs
type ToolDependency struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Type    string `json:"type" yaml:"type"`
	Readme  string `json:"readme,omitempty" yaml:"readme,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	_       struct{}
}

// DataManager describes a data manager entry
type DataManager struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	GUID           string   `json:"guid" yaml:"guid"`
	Version        string   `json:"version" yaml:"version"`
	ToolConfigFile string   `json:"tool_config_file" yaml:"tool_config_file"`
	DataTables     []string `json:"data_tables,omitempty" yaml:"data_tables,omitempty"`
	ToolGUID       string   `json:"tool_guid" yaml:"tool_guid"`
	_              struct{}
}

// InvalidFile reports a file which could not be processed while extracting metadata
type InvalidFile struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`

	// Changeset is the changeset revision the file was found in, when reported by a reconciliation
	Changeset string `json:"changeset,omitempty" yaml:"changeset,omitempty"`
}

// ToolDependencyKey builds the key of a tool dependency, e.g. "bwa/0.5.9"
func ToolDependencyKey(name, version string) string {
	return name + "/" + version
}

// HasTools tells if the document declares tools
func (m Metadata) HasTools() bool {
	return len(m.Tools) > 0
}

// HasRepositoryDependencies tells if the document declares valid repository dependencies
func (m Metadata) HasRepositoryDependencies() bool {
	return m.RepositoryDependencies != nil && len(m.RepositoryDependencies.Dependencies) > 0
}

// HasToolDependencies tells if the document declares tool dependencies
func (m Metadata) HasToolDependencies() bool {
	return len(m.ToolDependencies) > 0
}

// HasDataManagers tells if the document declares data managers
func (m Metadata) HasDataManagers() bool {
	return len(m.DataManagers) > 0
}

// IsEmpty is true when none of the four metadata categories is populated
func (m Metadata) IsEmpty() bool {
	return !m.HasTools() && !m.HasRepositoryDependencies() && !m.HasToolDependencies() && !m.HasDataManagers()
}

// Dependencies returns the valid repository dependency tuples, possibly nil
func (m Metadata) Dependencies() []DependencyTuple {
	if m.RepositoryDependencies == nil {
		return nil
	}
	return m.RepositoryDependencies.Dependencies
}

// GUIDs returns the sorted guids of all declared tools
func (m Metadata) GUIDs() []string {
	guids := make([]string, 0, len(m.Tools))
	for _, tool := range m.Tools {
		guids = append(guids, tool.GUID)
	}
	sort.Strings(guids)
	return guids
}

// InvalidDependencies returns the invalid repository dependency tuples, possibly nil
func (m Metadata) InvalidDependencies() []DependencyTuple {
	if m.InvalidRepositoryDependencies == nil {
		return nil
	}
	return m.InvalidRepositoryDependencies.Dependencies
}
