// Package download implements the bounded-concurrency scheduler that repairs
// files flagged by verification. Each task owns exactly one file: workers only
// ever append, so a partially written file stays resumable by the next
// verification pass.
package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pssteam/steamfetch/internal/filex"
	"github.com/pssteam/steamfetch/internal/logging"
	"github.com/pssteam/steamfetch/internal/manifest"
)

// DefaultWorkers is the default number of files downloaded simultaneously.
const DefaultWorkers = 10

// ChunkFetcher retrieves raw chunk bytes; satisfied by steam.Client.
type ChunkFetcher interface {
	FetchChunk(ctx context.Context, appID, depotID uint32, chunk manifest.Chunk) ([]byte, error)
}

// Task is one file to repair: write entry's chunks to Path starting at the
// verified resume Offset. Offset always sits on a chunk boundary.
type Task struct {
	Entry   *manifest.FileEntry
	DepotID uint32
	Path    string
	Offset  int64
}

// MissingBytes returns how many bytes the task still has to fetch.
func (t Task) MissingBytes() int64 {
	return t.Entry.Size - t.Offset
}

// FileError records a per-file failure. Failures never abort the batch; the
// next verification pass re-detects the file and queues it again.
type FileError struct {
	Path string
	Err  error
}

// Summary aggregates the outcome of one scheduler run.
type Summary struct {
	BytesWritten int64
	Completed    int
	Failed       []FileError
}

// ProgressFunc observes aggregate progress after every written chunk.
type ProgressFunc func(written, total int64)

// Scheduler downloads missing byte ranges with at most Workers concurrent
// files. The zero value is not usable; construct with NewScheduler.
type Scheduler struct {
	fetcher  ChunkFetcher
	appID    uint32
	workers  int
	log      logging.Logger
	progress ProgressFunc
}

func NewScheduler(fetcher ChunkFetcher, appID uint32, workers int, log logging.Logger, progress ProgressFunc) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Scheduler{fetcher: fetcher, appID: appID, workers: workers, log: log, progress: progress}
}

type result struct {
	task Task
	err  error
}

// Run drains all tasks through the worker pool and returns once every task
// has completed or failed. A failure on one file does not affect any other.
func (s *Scheduler) Run(ctx context.Context, tasks []Task) *Summary {
	var total int64
	for _, t := range tasks {
		total += t.MissingBytes()
	}

	var written atomic.Int64
	report := func(n int64) {
		w := written.Add(n)
		if s.progress != nil {
			s.progress(w, total)
		}
	}

	workCh := make(chan Task)
	resultCh := make(chan result)

	for w := 0; w < s.workers; w++ {
		go func() {
			for task := range workCh {
				err := s.downloadFile(ctx, task, report)
				resultCh <- result{task: task, err: err}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, t := range tasks {
			workCh <- t
		}
	}()

	summary := &Summary{}
	for range tasks {
		r := <-resultCh
		if r.err != nil {
			s.log.Error(ctx, "download failed", "path", r.task.Path, "error", r.err)
			summary.Failed = append(summary.Failed, FileError{Path: r.task.Path, Err: r.err})
			continue
		}
		summary.Completed++
	}
	summary.BytesWritten = written.Load()
	return summary
}

// downloadFile appends the missing chunks of one file. The file is opened in
// append mode only; an interrupted write leaves a prefix the verifier can
// re-validate.
func (s *Scheduler) downloadFile(ctx context.Context, task Task, report func(int64)) error {
	if err := filex.EnsureDir(filepath.Dir(task.Path)); err != nil {
		return err
	}

	f, err := os.OpenFile(task.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	for _, chunk := range task.Entry.Chunks {
		if chunk.Offset < task.Offset {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := s.fetcher.FetchChunk(ctx, s.appID, task.DepotID, chunk)
		if err != nil {
			return fmt.Errorf("fetch chunk at %d: %w", chunk.Offset, err)
		}
		if int64(len(data)) != chunk.Size {
			return fmt.Errorf("chunk at %d: got %d bytes, want %d", chunk.Offset, len(data), chunk.Size)
		}

		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write chunk at %d: %w", chunk.Offset, err)
		}
		report(chunk.Size)
	}
	return nil
}
