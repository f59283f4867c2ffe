package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/toolshed/shedmon/pkg/errors"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/snapshot/status"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

var (
	_ Store = &SQLite{}

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id                                 TEXT PRIMARY KEY,
    repository_id                      TEXT NOT NULL,
    changeset_revision                 TEXT NOT NULL,
    metadata                           TEXT NOT NULL,
    downloadable                       BOOLEAN NOT NULL DEFAULT FALSE,
    has_repository_dependencies        BOOLEAN NOT NULL DEFAULT FALSE,
    has_repository_dependencies_only_if_compiling_contained_td BOOLEAN NOT NULL DEFAULT FALSE,
    includes_tools                     BOOLEAN NOT NULL DEFAULT FALSE,
    includes_tool_dependencies         BOOLEAN NOT NULL DEFAULT FALSE,
    tool_versions                      TEXT NOT NULL DEFAULT '{}',
    created_at                         TEXT NOT NULL,
    UNIQUE(repository_id, changeset_revision)
);

CREATE INDEX IF NOT EXISTS snapshots_repository ON snapshots (repository_id);
`

const columns = `id, repository_id, changeset_revision, metadata, downloadable, has_repository_dependencies,
    has_repository_dependencies_only_if_compiling_contained_td, includes_tools, includes_tool_dependencies,
    tool_versions, created_at`

// SQLite keeps snapshots in a SQLite database
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database at dbPath, and creates the schema if needed
func OpenSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open database: %w", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("snapshot: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("snapshot: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(...interface{}) error
}

func scanSnapshot(row scanner) (model.SnapshotDescriptor, error) {
	var (
		sd                     model.SnapshotDescriptor
		metadata, toolVersions string
		createdAt              string
	)
	err := row.Scan(&sd.ID, &sd.RepositoryID, &sd.ChangesetRevision, &metadata,
		&sd.Downloadable, &sd.HasRepositoryDependencies, &sd.HasRepositoryDependenciesOnlyIfCompiling,
		&sd.IncludesTools, &sd.IncludesToolDependencies, &toolVersions, &createdAt)
	if err != nil {
		return sd, err
	}
	if err := json.UnmarshalFromString(metadata, &sd.Metadata); err != nil {
		return sd, status.ErrCorrupted.Wrap(err)
	}
	if err := json.UnmarshalFromString(toolVersions, &sd.ToolVersions); err != nil {
		return sd, status.ErrCorrupted.Wrap(err)
	}
	if len(sd.ToolVersions) == 0 {
		sd.ToolVersions = nil
	}
	if sd.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return sd, status.ErrCorrupted.Wrap(err)
	}
	return sd, nil
}

func encode(sd model.SnapshotDescriptor) (metadata, toolVersions string, err error) {
	if metadata, err = json.MarshalToString(sd.Metadata); err != nil {
		return
	}
	versions := sd.ToolVersions
	if versions == nil {
		versions = map[string]string{}
	}
	toolVersions, err = json.MarshalToString(versions)
	return
}

// Find a snapshot
func (s *SQLite) Find(ctx context.Context, repositoryID, changeset string) (model.SnapshotDescriptor, error) {
	return s.find(ctx, s.db, repositoryID, changeset)
}

type querier interface {
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func (s *SQLite) find(ctx context.Context, q querier, repositoryID, changeset string) (model.SnapshotDescriptor, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+columns+" FROM snapshots WHERE repository_id = ? AND changeset_revision = ?",
		repositoryID, changeset)
	sd, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sd, status.ErrNotFound.Wrapf("repository %s at %s", repositoryID, changeset)
	}
	return sd, err
}

// List the snapshots of a repository, sorted by changeset revision
func (s *SQLite) List(ctx context.Context, repositoryID string) (model.SnapshotDescriptors, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM snapshots WHERE repository_id = ? ORDER BY changeset_revision", repositoryID)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list %s: %w", repositoryID, err)
	}
	defer rows.Close()

	var list model.SnapshotDescriptors
	for rows.Next() {
		sd, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Sort(list)
	return list, nil
}

// inTx runs some statements in a transaction, committed only when fn succeeds
func (s *SQLite) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit: %w", err)
	}
	return nil
}

// Create a snapshot
func (s *SQLite) Create(ctx context.Context, sd model.SnapshotDescriptor) error {
	if err := validate(sd); err != nil {
		return err
	}
	metadata, toolVersions, err := encode(sd)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.find(ctx, tx, sd.RepositoryID, sd.ChangesetRevision); err == nil {
			return status.ErrExists.Wrapf("repository %s at %s", sd.RepositoryID, sd.ChangesetRevision)
		} else if !errors.Is(err, status.ErrNotFound) {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO snapshots ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			sd.ID, sd.RepositoryID, sd.ChangesetRevision, metadata,
			sd.Downloadable, sd.HasRepositoryDependencies, sd.HasRepositoryDependenciesOnlyIfCompiling,
			sd.IncludesTools, sd.IncludesToolDependencies, toolVersions,
			sd.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("snapshot: insert %s: %w", sd.ID, err)
		}
		return nil
	})
}

// Update a snapshot
func (s *SQLite) Update(ctx context.Context, changeset string, sd model.SnapshotDescriptor) error {
	if err := validate(sd); err != nil {
		return err
	}
	metadata, toolVersions, err := encode(sd)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := s.find(ctx, tx, sd.RepositoryID, changeset)
		if err != nil {
			return err
		}
		if existing.ID != sd.ID {
			return status.ErrInvalid.Wrapf("snapshot %s cannot replace snapshot %s", sd.ID, existing.ID)
		}
		if changeset != sd.ChangesetRevision {
			if _, err := s.find(ctx, tx, sd.RepositoryID, sd.ChangesetRevision); err == nil {
				return status.ErrExists.Wrapf("repository %s at %s", sd.RepositoryID, sd.ChangesetRevision)
			} else if !errors.Is(err, status.ErrNotFound) {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `UPDATE snapshots SET
    changeset_revision = ?, metadata = ?, downloadable = ?, has_repository_dependencies = ?,
    has_repository_dependencies_only_if_compiling_contained_td = ?, includes_tools = ?,
    includes_tool_dependencies = ?, tool_versions = ?
WHERE id = ?`,
			sd.ChangesetRevision, metadata, sd.Downloadable, sd.HasRepositoryDependencies,
			sd.HasRepositoryDependenciesOnlyIfCompiling, sd.IncludesTools,
			sd.IncludesToolDependencies, toolVersions, sd.ID)
		if err != nil {
			return fmt.Errorf("snapshot: update %s: %w", sd.ID, err)
		}
		return nil
	})
}

// Delete a snapshot
func (s *SQLite) Delete(ctx context.Context, repositoryID, changeset string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE repository_id = ? AND changeset_revision = ?",
			repositoryID, changeset)
		if err != nil {
			return fmt.Errorf("snapshot: delete %s at %s: %w", repositoryID, changeset, err)
		}
		return nil
	})
}
