// Package model defines the core domain models for gofup: categories,
// uploaded-file records, and the resolved file reference used by lookup.
package model

import (
	"fmt"
	"time"
)

// Category is a user-defined grouping of uploads mapped to one remote folder.
// The name is the primary key; re-saving an existing name overwrites the
// folder fields (upsert semantics).
type Category struct {
	Name       string    `json:"name"`
	FolderID   string    `json:"folder_id"`
	FolderCode string    `json:"folder_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// ShareLink returns the public folder URL for the category, or "" when the
// remote service never reported a folder code.
func (c Category) ShareLink() string {
	if c.FolderCode == "" {
		return ""
	}
	return "https://gofile.io/d/" + c.FolderCode
}

// FileRecord is a cache entry describing one file uploaded through this tool.
// The ID is assigned by the remote service, never generated locally. Category
// is a soft reference to Category.Name: removing a category leaves its file
// records behind as orphans.
type FileRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Size           int64     `json:"size"`
	MimeType       string    `json:"mime_type"`
	UploadTime     time.Time `json:"upload_time"`
	DownloadLink   string    `json:"download_link"`
	FolderID       string    `json:"folder_id"`
	FolderCode     string    `json:"folder_code"`
	Category       string    `json:"category,omitempty"`
	AccountID      string    `json:"account_id,omitempty"`
	UploadSpeed    float64   `json:"upload_speed"`
	UploadDuration float64   `json:"upload_duration"`
}

// FileRef bundles a resolved FileRecord with how it was matched.
// SerialID is the ephemeral 1-based position in the listing the token was
// resolved against; it is zero unless the token matched by serial number.
type FileRef struct {
	File     FileRecord
	ID       string
	SerialID int
}

// Describe renders a short human-readable identification of the match,
// used in confirmation prompts before deletion.
func (r FileRef) Describe() string {
	s := fmt.Sprintf("'%s' (ID: %s", r.File.Name, r.ID)
	if r.SerialID > 0 {
		s += fmt.Sprintf(", Serial: %d", r.SerialID)
	}
	s += ")"
	if r.File.Category != "" {
		s += fmt.Sprintf(" in category '%s'", r.File.Category)
	}
	return s
}
