package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studylink/cnxgest/internal/config"
	"github.com/studylink/cnxgest/internal/library"
	"github.com/studylink/cnxgest/internal/textbook"
)

const goodModule = `<document xmlns="http://cnx.rice.edu/cnxml">
	<title>Good</title>
	<content><para>fine</para></content>
</document>`

// badModule parses as XML but has no content element.
const badModule = `<document xmlns="http://cnx.rice.edu/cnxml"><title>Bad</title></document>`

func writeBundle(t *testing.T, modules map[string]string) string {
	t.Helper()
	base := t.TempDir()

	list := ""
	for id, body := range modules {
		dir := filepath.Join(base, "modules", id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "index.cnxml"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		list += `<module document="` + id + `"/>`
	}

	col := `<collection xmlns="http://cnx.rice.edu/collxml" xmlns:md="http://cnx.rice.edu/mdml">
		<metadata><md:title>Book</md:title></metadata>
		<content><subcollection><md:title>Ch</md:title><content>` + list + `</content></subcollection></content>
	</collection>`
	if err := os.MkdirAll(filepath.Join(base, "collections"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "collections", "book.collection.xml"), []byte(col), 0o644); err != nil {
		t.Fatal(err)
	}
	return base
}

func newService(t *testing.T, modules map[string]string) *textbook.Service {
	t.Helper()
	return textbook.NewService(library.New(writeBundle(t, modules)), nil, slog.New(slog.DiscardHandler))
}

func TestWorkerProcessAllSucceed(t *testing.T) {
	svc := newService(t, map[string]string{"m1": goodModule, "m2": goodModule})
	job := NewJob()

	NewWorker(svc, slog.New(slog.DiscardHandler), 2).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %q, errors = %v", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.TotalModules != 2 || snap.Progress.Parsed != 2 || snap.Progress.Failed != 0 {
		t.Errorf("progress = %+v", snap.Progress)
	}
}

func TestWorkerProcessPartialFailure(t *testing.T) {
	svc := newService(t, map[string]string{"m1": goodModule, "m2": badModule})
	job := NewJob()

	NewWorker(svc, slog.New(slog.DiscardHandler), 2).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial {
		t.Fatalf("status = %q", snap.Status)
	}
	if snap.Progress.Parsed != 1 || snap.Progress.Failed != 1 {
		t.Errorf("progress = %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("errors = %v", snap.Progress.Errors)
	}
}

func TestWorkerProcessListingFailure(t *testing.T) {
	// A bundle without a collection file cannot be enumerated.
	svc := textbook.NewService(library.New(t.TempDir()), nil, slog.New(slog.DiscardHandler))
	job := NewJob()

	NewWorker(svc, slog.New(slog.DiscardHandler), 1).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("status = %q", snap.Status)
	}
}

func TestOrchestratorRunsSubmittedJob(t *testing.T) {
	svc := newService(t, map[string]string{"m1": goodModule})
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 4, MaxConcurrentParse: 2, JobTTL: time.Hour}
	log := slog.New(slog.DiscardHandler)

	o := NewOrchestrator(cfg, svc, log)
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob()
	if err := o.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		snap := o.GetJob(job.ID).Snapshot()
		if snap.Status == StatusCompleted {
			break
		}
		if snap.Status == StatusFailed || snap.Status == StatusPartial {
			t.Fatalf("job ended %q: %v", snap.Status, snap.Progress.Errors)
		}
		select {
		case <-deadline:
			t.Fatalf("job did not finish, last status %q", snap.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestOrchestratorQueueFull(t *testing.T) {
	svc := newService(t, map[string]string{"m1": goodModule})
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, MaxConcurrentParse: 1, JobTTL: time.Hour}

	// Not started: nothing drains the queue.
	o := NewOrchestrator(cfg, svc, slog.New(slog.DiscardHandler))

	if err := o.Submit(NewJob()); err != nil {
		t.Fatalf("first submit should fit: %v", err)
	}
	overflow := NewJob()
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue-full error")
	}
	if overflow.Snapshot().Status != StatusFailed {
		t.Errorf("overflow status = %q", overflow.Snapshot().Status)
	}
}
