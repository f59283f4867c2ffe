package core

import (
	"context"

	"github.com/toolshed/shedmon/pkg/core/status"
	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/zap"
)

// ResetToolVersions recomputes the tool versions of all downloadable revisions of a repository.
//
// Each tool guid is mapped to the guid of its parent: the most recent earlier version of a tool with the same id.
// Tools without an earlier version map to their own id.
func (r *Reconciler) ResetToolVersions(ctx context.Context, repo model.RepoDescriptor) error {
	changelog, err := r.history.Changelog(ctx, repo)
	if err != nil {
		return status.ErrHistory.Wrap(err)
	}
	return r.resetToolVersions(ctx, repo, changelog)
}

func (r *Reconciler) resetToolVersions(ctx context.Context, repo model.RepoDescriptor, changelog model.Changelog) error {
	persisted, err := r.snapshots.List(ctx, repo.ID)
	if err != nil {
		return status.ErrToolVersions.Wrap(err)
	}
	byChangeset := make(map[string]model.SnapshotDescriptor, len(persisted))
	for _, sd := range persisted {
		byChangeset[sd.ChangesetRevision] = sd
	}

	earlier := make([]model.SnapshotDescriptor, 0, len(persisted))
	for _, revision := range changelog {
		sd, ok := byChangeset[revision.ID]
		if !ok || !sd.Downloadable || !sd.Metadata.HasTools() {
			continue
		}

		versions := toolVersions(sd.Metadata.Tools, earlier)
		earlier = append(earlier, sd)
		if sameVersions(sd.ToolVersions, versions) {
			continue
		}

		sd.ToolVersions = versions
		if err := r.snapshots.Update(ctx, sd.ChangesetRevision, sd); err != nil {
			return status.ErrToolVersions.Wrapf("changeset %s: %v", sd.ChangesetRevision, err)
		}
		r.settings.l.Debug("reset tool versions",
			zap.String("repository", repo.FullName()),
			zap.String("changeset", sd.ChangesetRevision),
			zap.Int("tools", len(versions)),
		)
	}
	return nil
}

// toolVersions maps the guid of each tool to the guid of its parent
func toolVersions(tools []model.ToolRecord, earlier []model.SnapshotDescriptor) map[string]string {
	versions := make(map[string]string, len(tools))
	for _, tool := range tools {
		versions[tool.GUID] = parentGUID(tool, earlier)
	}
	return versions
}

// parentGUID scans earlier snapshots, most recent first, for another version of the same tool.
//
// Entries with the same guid are the unchanged tool itself.
func parentGUID(tool model.ToolRecord, earlier []model.SnapshotDescriptor) string {
	for i := len(earlier) - 1; i >= 0; i-- {
		for _, candidate := range earlier[i].Metadata.Tools {
			if candidate.GUID == tool.GUID {
				continue
			}
			if candidate.ID == tool.ID && candidate.Version != tool.Version {
				return candidate.GUID
			}
		}
	}
	return tool.ID
}

func sameVersions(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
