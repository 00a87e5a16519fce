package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/studylink/cnxgest/internal/textbook"
)

// Worker processes one corpus job at a time.
type Worker struct {
	svc *textbook.Service
	log *slog.Logger

	maxConcurrentParse int
}

func NewWorker(svc *textbook.Service, log *slog.Logger, maxParse int) *Worker {
	if maxParse <= 0 {
		maxParse = 1
	}
	return &Worker{
		svc:                svc,
		log:                log,
		maxConcurrentParse: maxParse,
	}
}

// Process parses every module the table of contents lists, with bounded
// concurrency. A module that fails is recorded on the job and skipped;
// the run only fails outright when the module list itself is
// unavailable.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	job.SetStatus(StatusListing, "listing modules")
	ids, err := w.svc.ModuleIDs()
	if err != nil {
		log.Error("listing modules failed", "error", err)
		job.AddError(fmt.Sprintf("list modules: %s", err))
		job.SetStatus(StatusFailed, "listing")
		return
	}
	job.SetTotalModules(len(ids))
	log.Info("corpus run started", "modules", len(ids))

	job.SetStatus(StatusParsing, "parsing modules")
	sem := make(chan struct{}, w.maxConcurrentParse)
	var wg sync.WaitGroup

	for _, id := range ids {
		select {
		case <-ctx.Done():
			job.AddError("canceled: " + ctx.Err().Error())
			job.SetStatus(StatusFailed, "canceled")
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := w.svc.GetModule(id); err != nil {
				log.Warn("module parse failed", "module_id", id, "error", err)
				job.AddError(fmt.Sprintf("module %s: %s", id, err))
				return
			}
			job.IncrParsed()
		}(id)
	}
	wg.Wait()

	snap := job.Snapshot()
	switch {
	case snap.Progress.Failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case snap.Progress.Parsed > 0:
		job.SetStatus(StatusPartial, "done with errors")
	default:
		job.SetStatus(StatusFailed, "all modules failed")
	}
	log.Info("corpus run finished", "parsed", snap.Progress.Parsed, "failed", snap.Progress.Failed)
}
