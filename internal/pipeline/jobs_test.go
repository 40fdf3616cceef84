package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	if ContentHashHex([]byte("aaa")) == ContentHashHex([]byte("bbb")) {
		t.Error("expected different hashes for different inputs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{Key: "nybyg", StartedAt: time.Now()}
	job.SetStatus(StatusQueued, "queued")

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting"},
		{StatusParsing, "parsing"},
		{StatusAssembling, "assembling"},
		{StatusWriting, "writing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
	if job.Duration() <= 0 {
		t.Errorf("expected positive duration, got %v", job.Duration())
	}
}

func TestJob_Fail(t *testing.T) {
	job := &Job{Key: "renovering"}
	cause := errors.New("boom")
	job.Fail("extracting", cause)
	if job.Status != StatusFailed || job.Phase != "extracting" {
		t.Errorf("expected failed in extracting, got %s in %s", job.Status, job.Phase)
	}
	if !errors.Is(job.Err, cause) {
		t.Errorf("expected cause to be kept, got %v", job.Err)
	}
}

func TestJobStatus_Failed(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		StatusCompleted: false,
		StatusPartial:   false,
		StatusFailed:    true,
		StatusNoSource:  true,
	} {
		if got := status.Failed(); got != want {
			t.Errorf("%s.Failed() = %v, want %v", status, got, want)
		}
	}
}

func TestJob_DurationBeforeStart(t *testing.T) {
	if d := (&Job{}).Duration(); d != 0 {
		t.Errorf("expected zero duration, got %v", d)
	}
}
