package history

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/errors"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/storage"
	storagestatus "github.com/toolshed/shedmon/pkg/storage/status"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

var _ Provider = &Store{}

// changesetSize is the size in bytes of changeset identifiers
const changesetSize = 20

// Store keeps repository histories in an object store:
//
//	history/{owner}/{repo}/changelog.yaml
//	history/{owner}/{repo}/{changeset}/tree/{path}
//
// Every revision stores a full copy of its tree.
type Store struct {
	store storage.Store
	l     *zap.Logger
}

// NewStore builds a history provider backed by an object store
func NewStore(store storage.Store, opts ...StoreOption) *Store {
	s := &Store{
		store: store,
		l:     zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

// Changelog of a repository. A repository without any committed revision has an empty history.
func (s *Store) Changelog(ctx context.Context, repo model.RepoDescriptor) (model.Changelog, error) {
	content, err := storage.GetBytes(ctx, s.store, model.GetArchivePathToChangelog(repo.Owner, repo.Name))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return model.Changelog{}, nil
		}
		return nil, err
	}
	var changelog model.Changelog
	if err := yaml.Unmarshal(content, &changelog); err != nil {
		return nil, fmt.Errorf("invalid changelog for %s: %w", repo.FullName(), err)
	}
	return changelog, nil
}

// Materialize copies the tree of a revision under some destination directory
func (s *Store) Materialize(ctx context.Context, repo model.RepoDescriptor, revision model.Revision, fs afero.Fs, dest string) error {
	prefix := model.GetArchivePathPrefixToTree(repo.Owner, repo.Name, revision.ID)
	keys, err := storage.AllKeysPrefix(ctx, s.store, prefix, "")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no tree stored for revision %s of %s", revision, repo.FullName())
	}
	for _, key := range keys {
		if err := s.materializeFile(ctx, key, fs, filepath.Join(dest, filepath.FromSlash(strings.TrimPrefix(key, prefix)))); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) materializeFile(ctx context.Context, key string, fs afero.Fs, target string) error {
	reader, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer reader.Close()
	return writeFile(fs, target, reader, 0600)
}

// Commit records the content of a directory as the new tip of the history of a repository.
//
// Hidden files and directories are not committed.
func (s *Store) Commit(ctx context.Context, repo model.RepoDescriptor, src afero.Fs, root string, opts ...CommitOption) (model.Revision, error) {
	settings := commitSettings{timestamp: time.Now().UTC()}
	for _, apply := range opts {
		apply(&settings)
	}

	changelog, err := s.Changelog(ctx, repo)
	if err != nil {
		return model.Revision{}, err
	}

	files, err := listTree(src, root)
	if err != nil {
		return model.Revision{}, err
	}
	if len(files) == 0 {
		return model.Revision{}, fmt.Errorf("nothing to commit in %q", root)
	}

	rev := model.Revision{
		ID:        settings.id,
		Number:    len(changelog),
		Timestamp: settings.timestamp,
		Message:   settings.message,
	}
	if rev.ID == "" {
		parent := ""
		if tip, ok := changelog.Tip(); ok {
			parent = tip.ID
		}
		rev.ID, err = changesetID(src, root, parent, files)
		if err != nil {
			return model.Revision{}, err
		}
	}
	if changelog.Contains(rev.ID) {
		return model.Revision{}, fmt.Errorf("revision %s is already committed for %s", rev.ID, repo.FullName())
	}

	for _, file := range files {
		if err := s.commitFile(ctx, repo, rev.ID, src, root, file); err != nil {
			return model.Revision{}, err
		}
	}

	changelog = append(changelog, rev)
	content, err := yaml.Marshal(changelog)
	if err != nil {
		return model.Revision{}, err
	}
	err = storage.PutBytes(ctx, s.store, model.GetArchivePathToChangelog(repo.Owner, repo.Name), content, storage.OverWrite)
	if err != nil {
		return model.Revision{}, err
	}
	s.l.Info("committed revision",
		zap.String("repository", repo.FullName()),
		zap.Stringer("changeset", rev),
		zap.Int("files", len(files)),
	)
	return rev, nil
}

func (s *Store) commitFile(ctx context.Context, repo model.RepoDescriptor, changeset string, src afero.Fs, root, file string) error {
	f, err := src.Open(filepath.Join(root, filepath.FromSlash(file)))
	if err != nil {
		return err
	}
	defer f.Close()
	return s.store.Put(ctx, model.GetArchivePathToTreeFile(repo.Owner, repo.Name, changeset, file), f, storage.OverWrite)
}

// listTree returns the sorted slash-separated relative paths of all regular files under root
func listTree(fs afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if pth != root && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, pth)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// changesetID hashes the parent changeset and the content of the tree
func changesetID(fs afero.Fs, root, parent string, files []string) (string, error) {
	hasher, err := blake2b.New(&blake2b.Config{Size: changesetSize})
	if err != nil {
		return "", err
	}
	_, _ = io.WriteString(hasher, parent)
	for _, file := range files {
		_, _ = io.WriteString(hasher, "\x00"+file+"\x00")
		f, err := fs.Open(filepath.Join(root, filepath.FromSlash(file)))
		if err != nil {
			return "", err
		}
		_, err = io.Copy(hasher, f)
		_ = f.Close()
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
