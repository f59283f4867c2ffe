package snapshot

import (
	"context"

	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/snapshot/status"
)

// Store persists metadata snapshots
type Store interface {
	// Find the snapshot of a repository at some changeset revision, or status.ErrNotFound
	Find(ctx context.Context, repositoryID, changeset string) (model.SnapshotDescriptor, error)

	// List all snapshots of a repository
	List(ctx context.Context, repositoryID string) (model.SnapshotDescriptors, error)

	// Create a new snapshot, or fail with status.ErrExists
	Create(context.Context, model.SnapshotDescriptor) error

	// Update replaces the snapshot found at some changeset revision, or fails with status.ErrNotFound.
	//
	// The updated snapshot may cite another changeset revision, provided no snapshot exists there.
	Update(ctx context.Context, changeset string, snapshot model.SnapshotDescriptor) error

	// Delete the snapshot of a repository at some changeset revision. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, repositoryID, changeset string) error
}

func validate(sd model.SnapshotDescriptor) error {
	switch {
	case sd.ID == "":
		return status.ErrInvalid.Wrapf("snapshot without id")
	case sd.RepositoryID == "":
		return status.ErrInvalid.Wrapf("snapshot %s without repository", sd.ID)
	case sd.ChangesetRevision == "":
		return status.ErrInvalid.Wrapf("snapshot %s without changeset revision", sd.ID)
	}
	return nil
}
