package snapshot

import (
	"context"
	"fmt"
	"sort"

	"github.com/toolshed/shedmon/pkg/errors"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/snapshot/status"
	"github.com/toolshed/shedmon/pkg/storage"
	storagestatus "github.com/toolshed/shedmon/pkg/storage/status"
	"gopkg.in/yaml.v2"
)

var _ Store = &ObjectStore{}

// ObjectStore keeps snapshots as YAML descriptors in an object store,
// at snapshots/{repository-id}/{changeset}/snapshot.yaml
type ObjectStore struct {
	store storage.Store
}

// NewObjectStore builds a snapshot store over some object store
func NewObjectStore(store storage.Store) *ObjectStore {
	return &ObjectStore{store: store}
}

func (o *ObjectStore) read(ctx context.Context, key string) (model.SnapshotDescriptor, error) {
	var sd model.SnapshotDescriptor
	content, err := storage.GetBytes(ctx, o.store, key)
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return sd, status.ErrNotFound.Wrapf("key %q", key)
		}
		return sd, err
	}
	if err := yaml.Unmarshal(content, &sd); err != nil {
		return sd, status.ErrCorrupted.Wrap(err)
	}
	return sd, nil
}

func (o *ObjectStore) write(ctx context.Context, sd model.SnapshotDescriptor, exclusive bool) error {
	content, err := yaml.Marshal(sd)
	if err != nil {
		return err
	}
	key := model.GetArchivePathToSnapshot(sd.RepositoryID, sd.ChangesetRevision)
	if err := storage.PutBytes(ctx, o.store, key, content, exclusive); err != nil {
		if errors.Is(err, storagestatus.ErrExists) {
			return status.ErrExists.Wrapf("repository %s at %s", sd.RepositoryID, sd.ChangesetRevision)
		}
		return err
	}
	return nil
}

// Find a snapshot
func (o *ObjectStore) Find(ctx context.Context, repositoryID, changeset string) (model.SnapshotDescriptor, error) {
	return o.read(ctx, model.GetArchivePathToSnapshot(repositoryID, changeset))
}

// List the snapshots of a repository, sorted by changeset revision
func (o *ObjectStore) List(ctx context.Context, repositoryID string) (model.SnapshotDescriptors, error) {
	keys, err := storage.AllKeysPrefix(ctx, o.store, model.GetArchivePathPrefixToSnapshots(repositoryID), "")
	if err != nil {
		return nil, err
	}
	list := make(model.SnapshotDescriptors, 0, len(keys))
	for _, key := range keys {
		apc, err := model.GetArchivePathComponents(key)
		if err != nil || apc.RepositoryID != repositoryID {
			continue
		}
		sd, err := o.read(ctx, key)
		if err != nil {
			return nil, err
		}
		list = append(list, sd)
	}
	sort.Sort(list)
	return list, nil
}

// Create a snapshot
func (o *ObjectStore) Create(ctx context.Context, sd model.SnapshotDescriptor) error {
	if err := validate(sd); err != nil {
		return err
	}
	return o.write(ctx, sd, storage.NoOverWrite)
}

// Update a snapshot.
//
// Moving a snapshot to another changeset revision writes the new descriptor before removing the former one.
func (o *ObjectStore) Update(ctx context.Context, changeset string, sd model.SnapshotDescriptor) error {
	if err := validate(sd); err != nil {
		return err
	}
	existing, err := o.Find(ctx, sd.RepositoryID, changeset)
	if err != nil {
		return err
	}
	if existing.ID != sd.ID {
		return status.ErrInvalid.Wrapf("snapshot %s cannot replace snapshot %s", sd.ID, existing.ID)
	}
	if changeset == sd.ChangesetRevision {
		return o.write(ctx, sd, storage.OverWrite)
	}
	if err := o.write(ctx, sd, storage.NoOverWrite); err != nil {
		return err
	}
	return o.Delete(ctx, sd.RepositoryID, changeset)
}

// Delete a snapshot
func (o *ObjectStore) Delete(ctx context.Context, repositoryID, changeset string) error {
	if err := o.store.Delete(ctx, model.GetArchivePathToSnapshot(repositoryID, changeset)); err != nil {
		return fmt.Errorf("deleting snapshot of %s at %s: %w", repositoryID, changeset, err)
	}
	return nil
}
