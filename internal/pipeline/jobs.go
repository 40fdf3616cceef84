package pipeline

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/manualgest/internal/assemble"
	"github.com/dgallion1/manualgest/internal/output"
)

// ErrNoStructure means extraction yielded text but no heading was recognised,
// typically because a backend lost the line layout.
var ErrNoStructure = errors.New("no headings recognised")

// JobStatus represents the state of one manual's conversion.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusAssembling JobStatus = "assembling"
	StatusWriting    JobStatus = "writing"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial" // written, with review issues
	StatusFailed     JobStatus = "failed"
	StatusNoSource   JobStatus = "no_source"
)

// Failed reports whether the status makes the run exit non-zero.
func (s JobStatus) Failed() bool {
	return s == StatusFailed || s == StatusNoSource
}

// Job tracks the conversion of a single manual.
type Job struct {
	Key    string
	Name   string
	Source string

	Status JobStatus
	Phase  string

	Pages       int
	ContentHash string // SHA-256 of the extracted text
	Tasks       int
	Issues      []assemble.Issue
	Unplaced    int
	Output      output.Written

	Err       error
	StartedAt time.Time
	UpdatedAt time.Time
}

// SetStatus moves the job to status, recording the phase it happened in.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed in phase.
func (j *Job) Fail(phase string, err error) {
	j.Err = err
	j.SetStatus(StatusFailed, phase)
}

// Duration is the wall time spent on the job so far.
func (j *Job) Duration() time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	return j.UpdatedAt.Sub(j.StartedAt)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
