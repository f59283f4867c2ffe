package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/toolshed/shedmon/pkg/metrics"
	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/zap"
)

// watchedDirs lists the directories where new revisions of a repository show up
func watchedDirs(repo model.RepoDescriptor) []string {
	if repo.Path != "" {
		return []string{
			filepath.Join(repo.Path, ".git"),
			filepath.Join(repo.Path, ".git", "refs", "heads"),
		}
	}
	changelog := model.GetArchivePathToChangelog(repo.Owner, repo.Name)
	return []string{filepath.Join(objectsRoot(), filepath.FromSlash(filepath.Dir(changelog)))}
}

func serveMetrics(ctx context.Context, env *environment, addr string) {
	server := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(env.registry),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			env.l.Error("metrics server", zap.Error(err))
		}
	}()
}

var metadataWatch = &cobra.Command{
	Use:   "watch",
	Short: "Reset the metadata of a repo whenever its history changes",
	Long: `Watch the history of a repository and reset its metadata whenever a new revision shows up.

Changes are debounced: the reconciliation starts once the history has been quiet for a while.
The command runs until interrupted.`,
	Example: `% shedmon metadata watch --owner devteam --name bwa_wrappers --metrics-addr :9090`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		env := mustEnvironment(ctx)
		defer env.Close()
		repo := env.mustRepo()
		reconciler := env.reconciler()

		if shedmonFlags.metadata.metricsAddr != "" {
			serveMetrics(ctx, env, shedmonFlags.metadata.metricsAddr)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			wrapFatalln("watching history", err)
			return
		}
		defer watcher.Close()

		for _, dir := range watchedDirs(repo) {
			if repo.Path == "" {
				if err = os.MkdirAll(dir, 0700); err != nil {
					wrapFatalln("preparing history directory", err)
					return
				}
			}
			if err = watcher.Add(dir); err != nil {
				wrapFatalln("watching "+dir, err)
				return
			}
		}

		reconcile := func() {
			result, err := reconciler.Reconcile(ctx, repo)
			if err != nil {
				env.l.Error("resetting metadata", zap.String("repository", repo.FullName()), zap.Error(err))
				return
			}
			if err = renderResult(cmd.OutOrStdout(), result); err != nil {
				env.l.Error("rendering output", zap.Error(err))
			}
		}
		reconcile()

		debounce := time.NewTimer(shedmonFlags.metadata.debounce)
		debounce.Stop()
		defer debounce.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				env.l.Debug("history changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
				debounce.Reset(shedmonFlags.metadata.debounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				env.l.Warn("watching history", zap.Error(err))

			case <-debounce.C:
				reconcile()
			}
		}
	},
}

func init() {
	requireFlags(metadataWatch,
		addOwnerFlag(metadataWatch),
		addRepoNameFlag(metadataWatch),
	)
	addDebounceFlag(metadataWatch)
	addMetricsAddrFlag(metadataWatch)
	metadataCmd.AddCommand(metadataWatch)
}
