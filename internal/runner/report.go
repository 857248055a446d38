package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a single item.
type Status string

const (
	StatusCreated Status = "created"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusPlanned Status = "planned" // dry run
)

// ItemResult records what happened to one concept section.
type ItemResult struct {
	Name     string `json:"name"`
	Line     int    `json:"line"`
	Status   Status `json:"status"`
	RemoteID int    `json:"remote_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Err      error  `json:"-"`
}

// Created builds a successful ItemResult.
func Created(name string, line, remoteID int) ItemResult {
	return ItemResult{Name: name, Line: line, Status: StatusCreated, RemoteID: remoteID}
}

// Failed builds an ItemResult for a remote call that failed.
func Failed(name string, line int, err error) ItemResult {
	return ItemResult{Name: name, Line: line, Status: StatusFailed, Error: err.Error(), Err: err}
}

// Skipped builds an ItemResult for a section that was never sent.
func Skipped(name string, line int, reason string) ItemResult {
	return ItemResult{Name: name, Line: line, Status: StatusSkipped, Error: reason}
}

// Report summarizes one run.
type Report struct {
	RunID       string       `json:"run_id"`
	Kind        Kind         `json:"kind"`
	Target      string       `json:"target"`
	ConceptFile string       `json:"concept_file"`
	DryRun      bool         `json:"dry_run,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Items       []ItemResult `json:"items"`
}

func newReport(cfg Config, now time.Time) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Kind:        cfg.Kind,
		Target:      cfg.Target.String(),
		ConceptFile: cfg.ConceptFile,
		DryRun:      cfg.DryRun,
		StartedAt:   now,
		Items:       make([]ItemResult, 0),
	}
}

// Count returns how many items ended with status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// WriteJSON writes the report to path.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
