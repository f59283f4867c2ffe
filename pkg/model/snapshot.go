package model

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

// SnapshotDescriptor is the persisted metadata of a repository at some changeset revision.
type SnapshotDescriptor struct {
	ID                                       string            `json:"id" yaml:"id"`
	RepositoryID                             string            `json:"repository_id" yaml:"repository_id"`
	ChangesetRevision                        string            `json:"changeset_revision" yaml:"changeset_revision"`
	Metadata                                 Metadata          `json:"metadata" yaml:"metadata"`
	Downloadable                             bool              `json:"downloadable" yaml:"downloadable"`
	HasRepositoryDependencies                bool              `json:"has_repository_dependencies" yaml:"has_repository_dependencies"`
	HasRepositoryDependenciesOnlyIfCompiling bool              `json:"has_repository_dependencies_only_if_compiling_contained_td" yaml:"has_repository_dependencies_only_if_compiling_contained_td"`
	IncludesTools                            bool              `json:"includes_tools" yaml:"includes_tools"`
	IncludesToolDependencies                 bool              `json:"includes_tool_dependencies" yaml:"includes_tool_dependencies"`
	ToolVersions                             map[string]string `json:"tool_versions,omitempty" yaml:"tool_versions,omitempty"`
	Timestamp                                time.Time         `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	_                                        struct{}
}

// SnapshotDescriptors is a list of snapshots
type SnapshotDescriptors []SnapshotDescriptor

// NewSnapshotDescriptor builds a snapshot descriptor with a fresh unique ID
func NewSnapshotDescriptor(opts ...SnapshotDescriptorOption) *SnapshotDescriptor {
	snapshotID, err := ksuid.NewRandom()
	if err != nil {
		panic(fmt.Sprintf("cannot generate random ksuid: %v", err))
	}
	sd := &SnapshotDescriptor{
		ID:        snapshotID.String(),
		Timestamp: time.Now().UTC(),
	}
	for _, apply := range opts {
		apply(sd)
	}
	return sd
}

// SetMetadata replaces the metadata of the snapshot and derives all flags from it
func (s *SnapshotDescriptor) SetMetadata(metadata Metadata) {
	s.Metadata = metadata
	s.HasRepositoryDependencies, s.HasRepositoryDependenciesOnlyIfCompiling = DependencyTypes(metadata.Dependencies())
	s.IncludesTools = metadata.HasTools()
	s.IncludesToolDependencies = metadata.HasToolDependencies()
	s.Downloadable = s.HasRepositoryDependencies ||
		s.HasRepositoryDependenciesOnlyIfCompiling ||
		s.IncludesTools ||
		s.IncludesToolDependencies
}

// Len implements sort.Interface, by changeset revision
func (s SnapshotDescriptors) Len() int           { return len(s) }
func (s SnapshotDescriptors) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s SnapshotDescriptors) Less(i, j int) bool { return s[i].ChangesetRevision < s[j].ChangesetRevision }

// ChangesetRevisions lists the changeset revisions of all snapshots
func (s SnapshotDescriptors) ChangesetRevisions() []string {
	revs := make([]string, 0, len(s))
	for _, sd := range s {
		revs = append(revs, sd.ChangesetRevision)
	}
	return revs
}

// ByChangeset indexes snapshots by their changeset revision
func (s SnapshotDescriptors) ByChangeset() map[string]SnapshotDescriptor {
	index := make(map[string]SnapshotDescriptor, len(s))
	for _, sd := range s {
		index[sd.ChangesetRevision] = sd
	}
	return index
}
