package domain

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// DownloadState is the lifecycle state derived from a record
type DownloadState string

const (
	StatePending     DownloadState = "pending"
	StateDownloading DownloadState = "downloading"
	StatePaused      DownloadState = "paused"
	StateDone        DownloadState = "done"
)

// DownloadStatus is the snapshot the transfer engine pushes for a single url.
// Every field is required; the engine sends the whole snapshot on each change.
type DownloadStatus struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	URL         string  `json:"url"`
	Transferred int64   `json:"transferred"`
	Size        int64   `json:"size"`
	Speed       float64 `json:"speed"`
	Progress    float64 `json:"progress"`
	Downloading bool    `json:"downloading"`
	Done        bool    `json:"done"`
}

// Validate checks the event before it is applied
func (s DownloadStatus) Validate() error {
	switch {
	case strings.TrimSpace(s.URL) == "":
		return fmt.Errorf("%w: url is empty", ErrMalformedStatus)
	case s.Transferred < 0:
		return fmt.Errorf("%w: transferred is negative", ErrMalformedStatus)
	case s.Size < 0:
		return fmt.Errorf("%w: size is negative", ErrMalformedStatus)
	case math.IsNaN(s.Speed) || math.IsInf(s.Speed, 0) || s.Speed < 0:
		return fmt.Errorf("%w: invalid speed %v", ErrMalformedStatus, s.Speed)
	case math.IsNaN(s.Progress) || math.IsInf(s.Progress, 0):
		return fmt.Errorf("%w: invalid progress %v", ErrMalformedStatus, s.Progress)
	}
	return nil
}

// Normalize returns a copy that satisfies the record invariants:
// progress is clamped to [0, 100] and a finished download is never
// reported as downloading.
func (s DownloadStatus) Normalize() DownloadStatus {
	s.Progress = math.Max(0, math.Min(100, s.Progress))
	if s.Done {
		s.Downloading = false
		s.Speed = 0
		s.Progress = 100
		if s.Size > 0 {
			s.Transferred = s.Size
		}
	}
	return s
}

// DownloadRecord is the registry's canonical state of one download
type DownloadRecord struct {
	URL         string    `json:"url" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Transferred int64     `json:"transferred"`
	Size        int64     `json:"size"`
	Speed       float64   `json:"speed"`
	Progress    float64   `json:"progress"`
	Downloading bool      `json:"downloading"`
	Done        bool      `json:"done"`
	Seq         int64     `json:"seq" gorm:"not null;index"`
	Started     bool      `json:"started"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDownloadRecord creates a record from the first event seen for its url
func NewDownloadRecord(status DownloadStatus, seq int64) DownloadRecord {
	r := DownloadRecord{Seq: seq}
	r.Replace(status)
	return r
}

// Replace overwrites every engine-owned field with the event's values.
// Registry metadata (Seq, Started) survives the replace.
func (r *DownloadRecord) Replace(status DownloadStatus) {
	status = status.Normalize()
	r.URL = status.URL
	r.Name = status.Name
	r.Path = status.Path
	r.Transferred = status.Transferred
	r.Size = status.Size
	r.Speed = status.Speed
	r.Progress = status.Progress
	r.Downloading = status.Downloading
	r.Done = status.Done
	if status.Downloading || status.Done {
		r.Started = true
	}
	r.UpdatedAt = time.Now()
}

// State derives the lifecycle state
func (r DownloadRecord) State() DownloadState {
	switch {
	case r.Done:
		return StateDone
	case r.Downloading:
		return StateDownloading
	case r.Started:
		return StatePaused
	default:
		return StatePending
	}
}

// CanPause reports whether a pause command makes sense for this record
func (r DownloadRecord) CanPause() bool {
	return r.Downloading
}

// CanContinue reports whether a continue command makes sense for this record
func (r DownloadRecord) CanContinue() bool {
	return !r.Downloading && !r.Done
}

// Status converts the record back to the engine's snapshot shape
func (r DownloadRecord) Status() DownloadStatus {
	return DownloadStatus{
		Name:        r.Name,
		Path:        r.Path,
		URL:         r.URL,
		Transferred: r.Transferred,
		Size:        r.Size,
		Speed:       r.Speed,
		Progress:    r.Progress,
		Downloading: r.Downloading,
		Done:        r.Done,
	}
}

// HasExtension reports whether the record's name ends with one of exts.
// Comparison is case-insensitive; exts may be given with or without the dot.
func (r DownloadRecord) HasExtension(exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(r.Name))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e {
			return true
		}
	}
	return false
}

// DownloadStats counts records per state
type DownloadStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Downloading int `json:"downloading"`
	Paused      int `json:"paused"`
	Done        int `json:"done"`
}

// Add counts one record
func (s *DownloadStats) Add(r DownloadRecord) {
	s.Total++
	switch r.State() {
	case StatePending:
		s.Pending++
	case StateDownloading:
		s.Downloading++
	case StatePaused:
		s.Paused++
	case StateDone:
		s.Done++
	}
}
