package core

import (
	"os"
	"runtime"

	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/metrics"
	"go.uber.org/zap"
)

// Option sets options for the reconciliation engine
type Option func(*Settings)

// Settings defines various settings for core features
type Settings struct {
	concurrentReconcile int
	l                   *zap.Logger
	metrics             *metrics.Reconciliation
	scratchFs           afero.Fs
	scratchDir          string
	doneChannel         chan struct{}
}

var (
	defaultReconcileConcurrency = 2 * runtime.NumCPU()
)

// ConcurrentReconcile sets the max number of repositories reconciled concurrently. It defaults to 2 x #cpus.
func ConcurrentReconcile(concurrentReconcile int) Option {
	return func(s *Settings) {
		if concurrentReconcile <= 0 {
			s.concurrentReconcile = defaultReconcileConcurrency
			return
		}
		s.concurrentReconcile = concurrentReconcile
	}
}

// WithLogger sets a logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.l = l
		}
	}
}

// WithMetrics enables prometheus metrics
func WithMetrics(m *metrics.Reconciliation) Option {
	return func(s *Settings) {
		s.metrics = m
	}
}

// WithScratch sets the file system and parent directory where revisions are materialized.
//
// It defaults to the OS temp dir.
func WithScratch(fs afero.Fs, dir string) Option {
	return func(s *Settings) {
		if fs != nil {
			s.scratchFs = fs
		}
		s.scratchDir = dir
	}
}

// WithDoneChan sets a signaling channel controlled by the caller to interrupt batch reconciliations.
//
// A repository being reconciled is always allowed to complete.
func WithDoneChan(done chan struct{}) Option {
	return func(s *Settings) {
		s.doneChannel = done
	}
}

func defaultSettings() Settings {
	return Settings{
		concurrentReconcile: defaultReconcileConcurrency,
		l:                   zap.NewNop(),
		scratchFs:           afero.NewOsFs(),
		scratchDir:          os.TempDir(),
	}
}

func newSettings(opts []Option) Settings {
	s := defaultSettings()
	for _, apply := range opts {
		apply(&s)
	}
	return s
}
