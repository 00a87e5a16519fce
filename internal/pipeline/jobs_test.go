package pipeline

import (
	"testing"
	"time"
)

func TestNewJob(t *testing.T) {
	job := NewJob()
	if job.ID == "" {
		t.Fatal("job must get an id")
	}
	if job.Status != StatusQueued {
		t.Errorf("status = %q", job.Status)
	}
	if NewJob().ID == job.ID {
		t.Error("job ids must be unique")
	}
}

func TestJobProgress(t *testing.T) {
	job := NewJob()
	job.SetStatus(StatusParsing, "parsing modules")
	job.SetTotalModules(3)
	job.IncrParsed()
	job.IncrParsed()
	job.AddError("module m3: boom")

	snap := job.Snapshot()
	if snap.Status != StatusParsing {
		t.Errorf("status = %q", snap.Status)
	}
	if snap.Progress.TotalModules != 3 || snap.Progress.Parsed != 2 || snap.Progress.Failed != 1 {
		t.Errorf("progress = %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "module m3: boom" {
		t.Errorf("errors = %v", snap.Progress.Errors)
	}
}

func TestSnapshotErrorsNeverNil(t *testing.T) {
	snap := NewJob().Snapshot()
	if snap.Progress.Errors == nil {
		t.Fatal("errors must be an empty slice, not nil, for JSON encoding")
	}
}

func TestJobStore(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob()
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Fatalf("Get returned %v", got)
	}
	if got := store.Get("absent"); got != nil {
		t.Fatalf("expected nil for unknown id, got %v", got)
	}
}

func TestJobStoreCleanup(t *testing.T) {
	store := NewJobStore(time.Millisecond)
	job := NewJob()
	store.Put(job)

	time.Sleep(5 * time.Millisecond)
	store.Cleanup()

	if store.Get(job.ID) != nil {
		t.Fatal("expired job should be evicted")
	}

	longStore := NewJobStore(time.Hour)
	fresh := NewJob()
	longStore.Put(fresh)
	longStore.Cleanup()
	if longStore.Get(fresh.ID) == nil {
		t.Fatal("fresh job must survive cleanup")
	}
}
