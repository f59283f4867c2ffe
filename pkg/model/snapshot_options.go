package model

import "time"

// SnapshotDescriptorOption is a functor to build snapshot descriptors
type SnapshotDescriptorOption func(*SnapshotDescriptor)

// SnapshotRepository sets the repository the snapshot belongs to
func SnapshotRepository(repositoryID string) SnapshotDescriptorOption {
	return func(sd *SnapshotDescriptor) {
		sd.RepositoryID = repositoryID
	}
}

// SnapshotChangeset sets the changeset revision cited by the snapshot
func SnapshotChangeset(changeset string) SnapshotDescriptorOption {
	return func(sd *SnapshotDescriptor) {
		sd.ChangesetRevision = changeset
	}
}

// SnapshotMetadata sets the metadata and derived flags
func SnapshotMetadata(metadata Metadata) SnapshotDescriptorOption {
	return func(sd *SnapshotDescriptor) {
		sd.SetMetadata(metadata)
	}
}

// SnapshotTimestamp sets the timestamp of the snapshot
func SnapshotTimestamp(ts time.Time) SnapshotDescriptorOption {
	return func(sd *SnapshotDescriptor) {
		sd.Timestamp = ts
	}
}
