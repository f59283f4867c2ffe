package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/toolshed/shedmon/pkg/core/status"
	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RepositoryReconciler reconciles the metadata of one repository
type RepositoryReconciler interface {
	Reconcile(context.Context, model.RepoDescriptor) (*Result, error)
}

var _ RepositoryReconciler = &Reconciler{}

// RepositoryReport is the outcome of reconciling one repository in a batch
type RepositoryReport struct {
	Repository model.RepoDescriptor
	Result     *Result
	Err        error
}

// BatchReport sums up the reconciliation of a batch of repositories
type BatchReport struct {
	Succeeded     int
	Failed        int
	PerRepository map[string]*RepositoryReport // by repository id, or owner/name for unregistered repositories
	Duration      time.Duration
}

// Failures lists the reports of repositories which failed, sorted by name
func (b *BatchReport) Failures() []*RepositoryReport {
	failures := make([]*RepositoryReport, 0, b.Failed)
	for _, report := range b.PerRepository {
		if report.Err != nil {
			failures = append(failures, report)
		}
	}
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Repository.FullName() < failures[j].Repository.FullName()
	})
	return failures
}

// InvalidFiles counts all invalid files reported by the batch
func (b *BatchReport) InvalidFiles() int {
	var count int
	for _, report := range b.PerRepository {
		if report.Result != nil {
			count += len(report.Result.InvalidFiles)
		}
	}
	return count
}

// reportKey identifies a repository in a batch report
func reportKey(repo model.RepoDescriptor) string {
	if repo.ID != "" {
		return repo.ID
	}
	return repo.FullName()
}

// Report of some repository, if it was part of the batch
func (b *BatchReport) Report(repo model.RepoDescriptor) (*RepositoryReport, bool) {
	report, ok := b.PerRepository[reportKey(repo)]
	return report, ok
}

func (b *BatchReport) record(report *RepositoryReport) {
	b.PerRepository[reportKey(report.Repository)] = report
	if report.Err != nil {
		b.Failed++
		return
	}
	b.Succeeded++
}

// ReconcileAll reconciles a batch of repositories concurrently.
//
// Repositories sharing the same id are reconciled one after the other. A failed repository does not stop the batch:
// all errors are combined in the returned error, next to the report.
func ReconcileAll(ctx context.Context, reconciler RepositoryReconciler, repos []model.RepoDescriptor, opts ...Option) (*BatchReport, error) {
	settings := newSettings(opts)
	start := time.Now()
	report := &BatchReport{
		PerRepository: make(map[string]*RepositoryReport, len(repos)),
	}

	var (
		mx   sync.Mutex
		errs error
	)
	collect := func(r *RepositoryReport) {
		mx.Lock()
		defer mx.Unlock()
		report.record(r)
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Repository.FullName(), r.Err))
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(settings.concurrentReconcile)

	for _, group := range groupByID(repos) {
		group := group
		g.Go(func() error {
			for _, repo := range group {
				if interrupted(ctx, settings.doneChannel) {
					collect(&RepositoryReport{Repository: repo, Err: status.ErrInterrupted})
					continue
				}
				result, err := reconciler.Reconcile(ctx, repo)
				collect(&RepositoryReport{Repository: repo, Result: result, Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	settings.l.Info("reconciled repositories",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration),
	)
	return report, errs
}

// groupByID groups repositories sharing the same id, preserving the order of first appearance
func groupByID(repos []model.RepoDescriptor) [][]model.RepoDescriptor {
	index := make(map[string]int, len(repos))
	groups := make([][]model.RepoDescriptor, 0, len(repos))
	for _, repo := range repos {
		key := repo.ID
		if key == "" {
			key = repo.FullName()
		}
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, []model.RepoDescriptor{repo})
			continue
		}
		groups[i] = append(groups[i], repo)
	}
	return groups
}

func interrupted(ctx context.Context, done chan struct{}) bool {
	if ctx.Err() != nil {
		return true
	}
	if done == nil {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}
