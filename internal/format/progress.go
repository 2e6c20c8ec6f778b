// Package format derives display strings from download records.
// Every function is pure.
package format

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/yourusername/dltrack/internal/domain"
)

const (
	KiB int64 = 1024
	MiB       = 1024 * KiB
	GiB       = 1024 * MiB
)

// Unit is the scale a size pair is rendered in
type Unit string

const (
	UnitKB Unit = "KB"
	UnitMB Unit = "MB"
	UnitGB Unit = "GB"
)

// BytesToKB renders n in KiB with two decimals
func BytesToKB(n float64) string {
	return fmt.Sprintf("%.2f", n/float64(KiB))
}

// BytesToMB renders n in MiB with two decimals
func BytesToMB(n float64) string {
	return fmt.Sprintf("%.2f", n/float64(MiB))
}

// BytesToGB renders n in GiB with two decimals
func BytesToGB(n float64) string {
	return fmt.Sprintf("%.2f", n/float64(GiB))
}

// UnitFor picks the display unit from the total size
func UnitFor(size int64) Unit {
	switch {
	case size < MiB:
		return UnitKB
	case size < GiB:
		return UnitMB
	default:
		return UnitGB
	}
}

// Convert renders n in unit u
func Convert(n int64, u Unit) string {
	switch u {
	case UnitKB:
		return BytesToKB(float64(n))
	case UnitMB:
		return BytesToMB(float64(n))
	default:
		return BytesToGB(float64(n))
	}
}

// Percent renders the progress, e.g. "42.50%"
func Percent(r domain.DownloadRecord) string {
	return fmt.Sprintf("%.2f%%", r.Progress)
}

// Speed renders the transfer rate in MB/s, "0MB/s" when not downloading
func Speed(r domain.DownloadRecord) string {
	if !r.Downloading {
		return "0MB/s"
	}
	return BytesToMB(r.Speed) + "MB/s"
}

// Sizes renders "transferred/size" with both sides in the unit chosen by size
func Sizes(r domain.DownloadRecord) string {
	u := UnitFor(r.Size)
	return fmt.Sprintf("%s%s/%s%s", Convert(r.Transferred, u), u, Convert(r.Size, u), u)
}

// Label is the record title, prefixed while the download is active
func Label(r domain.DownloadRecord) string {
	if r.Downloading {
		return "Downloading: " + r.Name
	}
	return r.Name
}

// Details joins percent, sizes, speed and url
func Details(r domain.DownloadRecord) string {
	return fmt.Sprintf("%s - %s - %s - %s", Percent(r), Sizes(r), Speed(r), r.URL)
}

// Human renders n with IEC units, e.g. "1.9 MiB"
func Human(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Row is one display line of the downloads view
type Row struct {
	URL         string               `json:"url"`
	Path        string               `json:"path"`
	Label       string               `json:"label"`
	Details     string               `json:"details"`
	Percent     string               `json:"percent"`
	Sizes       string               `json:"sizes"`
	Speed       string               `json:"speed"`
	Progress    float64              `json:"progress"`
	State       domain.DownloadState `json:"state"`
	Success     bool                 `json:"success"`
	CanPause    bool                 `json:"can_pause"`
	CanContinue bool                 `json:"can_continue"`
}

// NewRow derives the display row of r
func NewRow(r domain.DownloadRecord) Row {
	return Row{
		URL:         r.URL,
		Path:        r.Path,
		Label:       Label(r),
		Details:     Details(r),
		Percent:     Percent(r),
		Sizes:       Sizes(r),
		Speed:       Speed(r),
		Progress:    r.Progress,
		State:       r.State(),
		Success:     r.Done,
		CanPause:    r.CanPause(),
		CanContinue: r.CanContinue(),
	}
}

// View renders records most recent first. records must be in insertion order.
func View(records []domain.DownloadRecord) []Row {
	rows := make([]Row, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rows = append(rows, NewRow(records[i]))
	}
	return rows
}
