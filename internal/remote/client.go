// Package remote talks to the GoFile.io HTTP API.
package remote

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized is returned when the server rejects the account token.
	ErrUnauthorized = errors.New("remote: unauthorized")

	// ErrNotFound is returned when the content no longer exists remotely.
	ErrNotFound = errors.New("remote: content not found")
)

// UploadResult carries the fields of a successful upload response that the
// rest of the program cares about.
type UploadResult struct {
	FileID       string
	FileName     string
	DownloadLink string
	FolderID     string
	FolderCode   string
	GuestToken   string
}

// Client is the remote file service surface the services depend on.
type Client interface {
	// Upload sends the file at path. An empty folderID lets the server
	// create a fresh folder; the result reports which folder was used.
	Upload(ctx context.Context, path, folderID string) (*UploadResult, error)

	// Delete removes the content with the given ID using the account token
	// that owns it.
	Delete(ctx context.Context, fileID, accountToken string) error
}
