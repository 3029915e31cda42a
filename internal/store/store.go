package store

import (
	"time"
)

// Status represents how a run ended
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
	StatusDryRun   Status = "dry_run"
)

// Run is one recorded webpanim invocation.
type Run struct {
	ID          string    `json:"id"`
	SourceDir   string    `json:"source_dir"`
	VideoPath   string    `json:"video_path,omitempty"`
	OutputPath  string    `json:"output_path,omitempty"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Collected   int       `json:"collected"`       // Images found in the source directory
	Removed     int       `json:"removed"`         // Pre-animated files left out
	Frames      int       `json:"frames"`          // Frames handed to img2webp
	DelayMS     int       `json:"delay_ms"`
	FPS         int       `json:"fps,omitempty"`   // Source frame rate, 0 if unknown
	Warnings    int       `json:"warnings"`        // Per-file tool failures
	OutputSize  int64     `json:"output_size,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Store defines the persistence interface for run history.
// Implementations must be safe for concurrent use.
type Store interface {
	// SaveRun persists a run. If the run already exists (by ID), it is updated.
	SaveRun(run *Run) error

	// GetRun retrieves a run by ID. Returns nil if not found.
	GetRun(id string) (*Run, error)

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(limit int) ([]*Run, error)

	// Stats returns totals over every recorded run.
	Stats() (Stats, error)

	// Close closes the store and releases resources.
	Close() error
}

// Stats holds history totals.
type Stats struct {
	Complete   int   `json:"complete"`
	Failed     int   `json:"failed"`
	Total      int   `json:"total"`
	Frames     int64 `json:"frames"`      // Frames encoded by complete runs
	OutputSize int64 `json:"output_size"` // Bytes written by complete runs
}
