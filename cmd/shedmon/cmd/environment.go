package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/compare"
	"github.com/toolshed/shedmon/pkg/core"
	"github.com/toolshed/shedmon/pkg/dlogger"
	"github.com/toolshed/shedmon/pkg/history"
	"github.com/toolshed/shedmon/pkg/metrics"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/registry"
	"github.com/toolshed/shedmon/pkg/snapshot"
	"github.com/toolshed/shedmon/pkg/storage"
	"github.com/toolshed/shedmon/pkg/storage/localfs"
	"go.uber.org/zap"
)

// environment wires the stores and services used by commands
type environment struct {
	l         *zap.Logger
	objects   storage.Store
	catalog   *registry.Catalog
	history   *history.Store
	provider  history.Provider
	snapshots snapshot.Store
	registry  *prometheus.Registry
	metrics   *metrics.Reconciliation
	closers   []func() error
}

func objectsRoot() string {
	return filepath.Join(shedmonFlags.root.store, "objects")
}

func newEnvironment(ctx context.Context) (*environment, error) {
	l, err := dlogger.GetConsoleLogger(shedmonFlags.root.logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", shedmonFlags.root.logLevel, err)
	}

	osFs := afero.NewOsFs()
	if err = osFs.MkdirAll(objectsRoot(), 0700); err != nil {
		return nil, err
	}
	local, err := localfs.NewAtomic(afero.NewBasePathFs(osFs, objectsRoot()))
	if err != nil {
		return nil, err
	}
	objects := storage.Instrument(nil, l, local)

	types := registry.DefaultTypes()
	if shedmonFlags.root.types != "" {
		types, err = registry.LoadTypes(osFs, shedmonFlags.root.types)
		if err != nil {
			return nil, err
		}
	}

	catalog, err := registry.OpenCatalog(ctx, objects, registry.WithTypes(types), registry.WithLogger(l))
	if err != nil {
		return nil, err
	}

	env := &environment{
		l:        l,
		objects:  objects,
		catalog:  catalog,
		history:  history.NewStore(objects, history.StoreLogger(l)),
		registry: prometheus.NewRegistry(),
	}
	env.provider = history.NewRouter(history.NewGit(history.GitLogger(l)), env.history)
	env.metrics = metrics.NewReconciliation(env.registry)

	if shedmonFlags.root.database != "" {
		db, err := snapshot.OpenSQLite(ctx, shedmonFlags.root.database)
		if err != nil {
			return nil, err
		}
		env.snapshots = db
		env.closers = append(env.closers, db.Close)
	} else {
		env.snapshots = snapshot.NewObjectStore(objects)
	}
	return env, nil
}

func (e *environment) Close() {
	for _, closer := range e.closers {
		if err := closer(); err != nil {
			e.l.Warn("closing", zap.Error(err))
		}
	}
	_ = e.l.Sync()
}

func (e *environment) comparator() *compare.Comparator {
	return compare.New(compare.WithTipOnly(e.catalog), compare.WithLogger(e.l))
}

func (e *environment) generator() core.MetadataGenerator {
	return core.NewShedGenerator(shedmonFlags.root.host, e.catalog, e.provider, core.WithLogger(e.l))
}

func (e *environment) reconciler() *core.Reconciler {
	return core.NewReconciler(e.provider, e.generator(), e.comparator(), e.snapshots, e.catalog.Types(),
		core.WithLogger(e.l),
		core.WithMetrics(e.metrics),
	)
}

func (e *environment) repo() (model.RepoDescriptor, error) {
	return e.catalog.GetRepo(shedmonFlags.repo.owner, shedmonFlags.repo.name)
}

// mustEnvironment builds the environment, or exits
func mustEnvironment(ctx context.Context) *environment {
	env, err := newEnvironment(ctx)
	if err != nil {
		wrapFatalln("initializing stores", err)
		return nil
	}
	return env
}

// mustRepo retrieves the repository designated by flags, or exits
func (e *environment) mustRepo() model.RepoDescriptor {
	repo, err := e.repo()
	if err != nil {
		wrapFatalln("retrieving repository", err)
	}
	return repo
}
