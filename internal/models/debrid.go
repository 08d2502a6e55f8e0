package models

import "time"

// DownloadStatus is the lifecycle state of a download in the debrid account.
type DownloadStatus string

const (
	DownloadStatusReady   DownloadStatus = "Ready"
	DownloadStatusPending DownloadStatus = "Pending"
	DownloadStatusError   DownloadStatus = "Error"
)

// DebridDownload is one entry of the account's active-download listing.
type DebridDownload struct {
	ID     int64          `json:"id"`
	Name   string         `json:"name"`
	Status DownloadStatus `json:"status"`
	// CompletedAt is nil when the service did not report a completion date.
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Files       []DebridFile `json:"files"`
}

// IsReady reports whether the download's files can be matched and unlocked.
func (d DebridDownload) IsReady() bool {
	return d.Status == DownloadStatusReady
}

// DebridFile is a single unlockable file within a download.
type DebridFile struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size"`
	// Link is the opaque handle passed back to the unlock endpoint.
	Link string `json:"link"`
}

// ResolvedMedia is the outcome of locating a file: its direct stream URL and original name.
type ResolvedMedia struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
