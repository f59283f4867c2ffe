package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/segmentio/ksuid"
	"github.com/toolshed/shedmon/pkg/errors"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/registry/status"
	"github.com/toolshed/shedmon/pkg/storage"
	storagestatus "github.com/toolshed/shedmon/pkg/storage/status"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Catalog of the users and repositories of a tool shed.
//
// Descriptors are persisted in a metadata store. Lookups are served by immutable radix trees,
// which are swapped atomically whenever the catalog is updated.
type Catalog struct {
	store storage.Store
	types *Types
	l     *zap.Logger

	mx     sync.RWMutex
	loaded bool
	users  *iradix.Tree // user name -> model.UserDescriptor
	repos  *iradix.Tree // owner/name -> model.RepoDescriptor
	byID   *iradix.Tree // repository id -> owner/name
}

// NewCatalog builds a catalog over some metadata store. The catalog must be loaded before use.
func NewCatalog(store storage.Store, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		store: store,
		types: DefaultTypes(),
		l:     zap.NewNop(),
		users: iradix.New(),
		repos: iradix.New(),
		byID:  iradix.New(),
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// OpenCatalog builds and loads a catalog
func OpenCatalog(ctx context.Context, store storage.Store, opts ...CatalogOption) (*Catalog, error) {
	c := NewCatalog(store, opts...)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Types known to this catalog
func (c *Catalog) Types() *Types {
	return c.types
}

func repoKey(owner, name string) []byte {
	return []byte(owner + "/" + name)
}

// Load (or reload) the index from all descriptors found in the store
func (c *Catalog) Load(ctx context.Context) error {
	users := iradix.New().Txn()
	repos := iradix.New().Txn()
	byID := iradix.New().Txn()

	userKeys, err := storage.AllKeysPrefix(ctx, c.store, model.GetArchivePathPrefixToUsers(), "")
	if err != nil {
		return err
	}
	for _, key := range userKeys {
		apc, err := model.GetArchivePathComponents(key)
		if err != nil {
			c.l.Warn("skipping unexpected key in users", zap.String("key", key), zap.Error(err))
			continue
		}
		var user model.UserDescriptor
		if err := c.readDescriptor(ctx, key, &user); err != nil {
			return err
		}
		if user.Name != apc.User {
			return fmt.Errorf("user names in descriptor %q and archive path %q don't match", user.Name, apc.User)
		}
		users.Insert([]byte(user.Name), user)
	}

	repoKeys, err := storage.AllKeysPrefix(ctx, c.store, model.GetArchivePathPrefixToRepos(), "")
	if err != nil {
		return err
	}
	for _, key := range repoKeys {
		apc, err := model.GetArchivePathComponents(key)
		if err != nil {
			c.l.Warn("skipping unexpected key in repos", zap.String("key", key), zap.Error(err))
			continue
		}
		var repo model.RepoDescriptor
		if err := c.readDescriptor(ctx, key, &repo); err != nil {
			return err
		}
		if repo.Name != apc.Repo || repo.Owner != apc.Owner {
			return fmt.Errorf("repository in descriptor %q and archive path %q don't match",
				repo.FullName(), apc.Owner+"/"+apc.Repo)
		}
		repos.Insert(repoKey(repo.Owner, repo.Name), repo)
		byID.Insert([]byte(repo.ID), repo.FullName())
	}

	c.mx.Lock()
	defer c.mx.Unlock()
	c.users = users.Commit()
	c.repos = repos.Commit()
	c.byID = byID.Commit()
	c.loaded = true
	c.l.Debug("catalog loaded", zap.Int("users", c.users.Len()), zap.Int("repositories", c.repos.Len()))
	return nil
}

func (c *Catalog) readDescriptor(ctx context.Context, key string, descriptor interface{}) error {
	content, err := storage.GetBytes(ctx, c.store, key)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(content, descriptor); err != nil {
		return fmt.Errorf("invalid descriptor at %q: %w", key, err)
	}
	return nil
}

func (c *Catalog) writeDescriptor(ctx context.Context, key string, descriptor interface{}) error {
	content, err := yaml.Marshal(descriptor)
	if err != nil {
		return err
	}
	return storage.PutBytes(ctx, c.store, key, content, storage.NoOverWrite)
}

// CreateUser registers a new user
func (c *Catalog) CreateUser(ctx context.Context, user model.UserDescriptor) (model.UserDescriptor, error) {
	if err := model.ValidateUser(user); err != nil {
		return user, err
	}
	if err := c.checkLoaded(); err != nil {
		return user, err
	}
	if user.Timestamp.IsZero() {
		user.Timestamp = time.Now().UTC()
	}

	err := c.writeDescriptor(ctx, model.GetArchivePathToUser(user.Name), user)
	if err != nil {
		if errors.Is(err, storagestatus.ErrExists) {
			return user, status.ErrUserExists.Wrapf("user %q", user.Name)
		}
		return user, err
	}

	c.mx.Lock()
	defer c.mx.Unlock()
	c.users, _, _ = c.users.Insert([]byte(user.Name), user)
	return user, nil
}

// EnsureUser returns a registered user, and creates it when it is not found
func (c *Catalog) EnsureUser(ctx context.Context, user model.UserDescriptor) (model.UserDescriptor, error) {
	existing, err := c.GetUser(user.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, status.ErrUserNotFound) {
		return user, err
	}
	return c.CreateUser(ctx, user)
}

// CreateRepo registers a new repository. Its owner must be a registered user.
//
// A repository ID is allocated when not provided.
func (c *Catalog) CreateRepo(ctx context.Context, repo model.RepoDescriptor) (model.RepoDescriptor, error) {
	if err := model.ValidateRepo(repo); err != nil {
		return repo, err
	}
	if !c.types.Has(repo.Type) {
		return repo, status.ErrUnknownType.Wrapf("type %q for repository %s", repo.Type, repo.FullName())
	}
	if _, err := c.GetUser(repo.Owner); err != nil {
		return repo, err
	}
	if repo.Type == "" {
		repo.Type = model.TypeUnrestricted
	}
	if repo.ID == "" {
		repo.ID = ksuid.New().String()
	}
	if repo.Timestamp.IsZero() {
		repo.Timestamp = time.Now().UTC()
	}

	err := c.writeDescriptor(ctx, model.GetArchivePathToRepoDescriptor(repo.Owner, repo.Name), repo)
	if err != nil {
		if errors.Is(err, storagestatus.ErrExists) {
			return repo, status.ErrRepoExists.Wrapf("repository %s", repo.FullName())
		}
		return repo, err
	}

	c.mx.Lock()
	defer c.mx.Unlock()
	c.repos, _, _ = c.repos.Insert(repoKey(repo.Owner, repo.Name), repo)
	c.byID, _, _ = c.byID.Insert([]byte(repo.ID), repo.FullName())
	return repo, nil
}

func (c *Catalog) checkLoaded() error {
	c.mx.RLock()
	defer c.mx.RUnlock()
	if !c.loaded {
		return status.ErrNotLoaded
	}
	return nil
}

// GetUser retrieves a user by name
func (c *Catalog) GetUser(name string) (model.UserDescriptor, error) {
	if err := c.checkLoaded(); err != nil {
		return model.UserDescriptor{}, err
	}
	c.mx.RLock()
	users := c.users
	c.mx.RUnlock()

	v, ok := users.Get([]byte(name))
	if !ok {
		return model.UserDescriptor{}, status.ErrUserNotFound.Wrapf("user %q", name)
	}
	return v.(model.UserDescriptor), nil
}

// GetRepo retrieves a repository by owner and name
func (c *Catalog) GetRepo(owner, name string) (model.RepoDescriptor, error) {
	if err := c.checkLoaded(); err != nil {
		return model.RepoDescriptor{}, err
	}
	c.mx.RLock()
	repos := c.repos
	c.mx.RUnlock()

	v, ok := repos.Get(repoKey(owner, name))
	if !ok {
		return model.RepoDescriptor{}, status.ErrRepoNotFound.Wrapf("repository %s/%s", owner, name)
	}
	return v.(model.RepoDescriptor), nil
}

// GetRepoByID retrieves a repository by its ID
func (c *Catalog) GetRepoByID(id string) (model.RepoDescriptor, error) {
	if err := c.checkLoaded(); err != nil {
		return model.RepoDescriptor{}, err
	}
	c.mx.RLock()
	byID := c.byID
	c.mx.RUnlock()

	v, ok := byID.Get([]byte(id))
	if !ok {
		return model.RepoDescriptor{}, status.ErrRepoNotFound.Wrapf("repository id %q", id)
	}
	parts := strings.SplitN(v.(string), "/", 2)
	return c.GetRepo(parts[0], parts[1])
}

// ListRepos lists repositories sorted by owner and name, optionally restricted to one owner.
//
// Deleted repositories are skipped.
func (c *Catalog) ListRepos(owner string) (model.RepoDescriptors, error) {
	if err := c.checkLoaded(); err != nil {
		return nil, err
	}
	c.mx.RLock()
	repos := c.repos
	c.mx.RUnlock()

	var prefix []byte
	if owner != "" {
		prefix = []byte(owner + "/")
	}
	list := make(model.RepoDescriptors, 0, repos.Len())
	repos.Root().WalkPrefix(prefix, func(_ []byte, v interface{}) bool {
		repo := v.(model.RepoDescriptor)
		if !repo.Deleted {
			list = append(list, repo)
		}
		return false
	})
	sort.Sort(list)
	return list, nil
}

// IsTipOnlyRepository tells if a repository is of a tip-only type.
//
// Repositories unknown to this catalog are not tip-only.
func (c *Catalog) IsTipOnlyRepository(_, name, owner string) bool {
	repo, err := c.GetRepo(owner, name)
	if err != nil {
		return false
	}
	return c.types.IsTipOnly(repo.Type)
}
