// Package reconcile drives the verify→download→reverify cycle that converges
// a local file tree to the aggregated target set. Verification and download
// phases strictly alternate and never overlap.
package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pssteam/steamfetch/internal/aggregate"
	"github.com/pssteam/steamfetch/internal/download"
	"github.com/pssteam/steamfetch/internal/logging"
	"github.com/pssteam/steamfetch/internal/verify"
)

// State names the phases of the reconciliation machine. Done and Cancelled
// are terminal.
type State string

const (
	StateVerify       State = "verify"
	StateAwaitConfirm State = "await-confirm"
	StateDownload     State = "download"
	StateDone         State = "done"
	StateCancelled    State = "cancelled"
)

// ConfirmFunc answers the repair question raised after a verify-only pass
// found damage: files needing repair and the missing byte total are surfaced,
// and a false answer cancels the run.
type ConfirmFunc func(files int, missingBytes int64) bool

// DefaultMaxPasses bounds how many download passes a run may attempt before
// giving up on a persistently failing remote.
const DefaultMaxPasses = 5

// Result describes how a reconciliation run ended.
type Result struct {
	State           State
	VerifyPasses    int
	BytesDownloaded int64
	Reason          string
}

// Reconciler owns one reconciliation policy: a scheduler for repairs, an
// optional confirmation hook and a download-pass bound with backoff between
// failed passes.
type Reconciler struct {
	scheduler *download.Scheduler
	confirm   ConfirmFunc
	maxPasses int
	log       logging.Logger

	// backoffBase seeds the fibonacci backoff between download passes.
	backoffBase time.Duration

	// sleep is a test seam; defaults to a context-aware sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewReconciler(scheduler *download.Scheduler, confirm ConfirmFunc, maxPasses int, log logging.Logger) *Reconciler {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Reconciler{
		scheduler:   scheduler,
		confirm:     confirm,
		maxPasses:   maxPasses,
		log:         log,
		backoffBase: time.Second,
		sleep:       sleepCtx,
	}
}

// Run reconciles baseDir against the target set. In verify-only mode the
// first damaged verification pass stops for confirmation before any download.
// Run returns an error only for context cancellation; every other outcome,
// including pass exhaustion and a declined repair, is a Result.
func (r *Reconciler) Run(ctx context.Context, set aggregate.TargetFileSet, baseDir string, verifyOnly bool) (*Result, error) {
	res := &Result{}
	backoff := retry.NewFibonacci(r.backoffBase)
	downloads := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res.VerifyPasses++
		tasks, missing := r.verifyPass(ctx, set, baseDir)
		if len(tasks) == 0 {
			res.State = StateDone
			return res, nil
		}
		r.log.Info(ctx, "verification found damage",
			"pass", res.VerifyPasses, "files", len(tasks), "missing_bytes", missing)

		if verifyOnly {
			res.State = StateAwaitConfirm
			if r.confirm == nil || !r.confirm(len(tasks), missing) {
				res.State = StateCancelled
				res.Reason = "repair declined"
				return res, nil
			}
			verifyOnly = false
		}

		if downloads >= r.maxPasses {
			res.State = StateCancelled
			res.Reason = fmt.Sprintf("still damaged after %d download passes", downloads)
			return res, nil
		}
		if downloads > 0 {
			d, _ := backoff.Next()
			r.log.Warn(ctx, "previous pass left damage, backing off", "wait", d)
			if err := r.sleep(ctx, d); err != nil {
				return nil, err
			}
		}

		res.State = StateDownload
		downloads++
		summary := r.scheduler.Run(ctx, tasks)
		res.BytesDownloaded += summary.BytesWritten
		r.log.Info(ctx, "download pass finished",
			"pass", downloads, "completed", summary.Completed, "failed", len(summary.Failed))
		// Back to verify: the re-scan is what detects and truncates anything
		// a failed transfer left behind.
	}
}

// verifyPass scans every non-directory entry and returns repair tasks with
// their resume offsets plus the missing byte total.
func (r *Reconciler) verifyPass(ctx context.Context, set aggregate.TargetFileSet, baseDir string) ([]download.Task, int64) {
	var tasks []download.Task
	var missing int64

	for _, path := range set.SortedPaths() {
		tf := set[path]
		if tf.Entry.IsDirectory {
			continue
		}
		localPath := filepath.Join(baseDir, filepath.FromSlash(tf.Entry.Path))
		offset := verify.File(tf.Entry, localPath)
		if offset == tf.Entry.Size && (tf.Entry.Size > 0 || exists(localPath)) {
			continue
		}
		tasks = append(tasks, download.Task{
			Entry:   tf.Entry,
			DepotID: tf.DepotID,
			Path:    localPath,
			Offset:  offset,
		})
		missing += tf.Entry.Size - offset
	}
	return tasks, missing
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
