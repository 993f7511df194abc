// Package upload drives the file upload workflow: expanding input paths,
// sending files to the remote service, and recording results in the
// metadata cache.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/model"
	"github.com/gofup/gofup/internal/prompt"
	"github.com/gofup/gofup/internal/remote"
)

// Store is the slice of the metadata cache the upload service needs.
type Store interface {
	GetCategory(ctx context.Context, name string) *model.Category
	SaveCategory(ctx context.Context, name, folderID, folderCode string, createdAt time.Time) bool
	SaveFile(ctx context.Context, f *model.FileRecord) bool
	GuestToken(ctx context.Context) string
	SaveGuestToken(ctx context.Context, v string) bool
}

// Service uploads files and persists the outcome. A record is written only
// after the remote service confirmed the upload.
type Service struct {
	store    Store
	client   remote.Client
	prompter prompt.Prompter
	out      io.Writer
	log      logging.Logger

	accountToken string
}

func NewService(store Store, client remote.Client, prompter prompt.Prompter,
	accountToken string, out io.Writer, log logging.Logger) *Service {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Service{
		store:        store,
		client:       client,
		prompter:     prompter,
		out:          out,
		log:          log,
		accountToken: accountToken,
	}
}

// PrepareFiles expands glob patterns and directories into a flat list of
// file paths. Directories are only descended into when recursive is set.
// Missing paths and empty patterns produce a warning, not an error.
func (s *Service) PrepareFiles(patterns []string, recursive bool) []string {
	var expanded []string
	for _, pattern := range patterns {
		if containsGlobMeta(pattern) {
			matches, err := filepath.Glob(pattern)
			if err != nil || len(matches) == 0 {
				fmt.Fprintf(s.out, "Warning: no files match pattern: %s\n", pattern)
				continue
			}
			expanded = append(expanded, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err != nil {
			fmt.Fprintf(s.out, "Warning: file not found: %s\n", pattern)
			continue
		}
		expanded = append(expanded, pattern)
	}

	var files []string
	for _, path := range expanded {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(s.out, "Warning: file not found: %s\n", path)
			continue
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		if !recursive {
			fmt.Fprintf(s.out, "Skipping directory %s (use -r to upload directories recursively)\n", path)
			continue
		}
		before := len(files)
		filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				files = append(files, p)
			}
			return nil
		})
		fmt.Fprintf(s.out, "Added %d files from directory %s\n", len(files)-before, path)
	}
	return files
}

// FilterTransportStreams asks about MPEG transport stream files, which do
// not play in browsers when shared, and drops the ones the user declines.
func (s *Service) FilterTransportStreams(files []string) []string {
	kept := files[:0:0]
	for _, path := range files {
		if !isTransportStream(path) {
			kept = append(kept, path)
			continue
		}
		fmt.Fprintf(s.out, "'%s' appears to be an MPEG-TS (.ts) file.\n", filepath.Base(path))
		fmt.Fprintln(s.out, "These files may not play correctly in browsers when shared.")
		if s.prompter.Confirm("Do you still want to upload this file? (yes/no):", false) {
			kept = append(kept, path)
		} else {
			fmt.Fprintf(s.out, "Skipping '%s'\n", filepath.Base(path))
		}
	}
	return kept
}

// UploadBatch uploads files sequentially into category. An empty category
// leaves every file in its own server-created folder. Returns how many
// uploads were recorded and how many failed; a cancelled context stops the
// batch where it stands.
func (s *Service) UploadBatch(ctx context.Context, files []string, category string) (uploaded, failed int, records []model.FileRecord) {
	folderID := ""
	folderKnown := false
	if category != "" {
		if c := s.store.GetCategory(ctx, category); c != nil {
			folderID = c.FolderID
			folderKnown = true
		}
	}

	for _, path := range files {
		if ctx.Err() != nil {
			fmt.Fprintln(s.out, "Interrupted; remaining files were not uploaded.")
			s.log.Warn(ctx, "upload batch interrupted", "uploaded", uploaded, "failed", failed)
			return uploaded, failed, records
		}

		rec, err := s.uploadOne(ctx, path, category, folderID)
		if err != nil {
			fmt.Fprintf(s.out, "Error uploading %s: %v\n", filepath.Base(path), err)
			s.log.Error(ctx, "upload failed", "path", path, "error", err)
			failed++
			continue
		}
		uploaded++
		records = append(records, *rec)

		if category != "" && !folderKnown && rec.FolderID != "" {
			s.store.SaveCategory(ctx, category, rec.FolderID, rec.FolderCode, time.Now())
			folderID = rec.FolderID
			folderKnown = true
			fmt.Fprintf(s.out, "Created new folder for category '%s'\n", category)
		}
	}
	return uploaded, failed, records
}

func (s *Service) uploadOne(ctx context.Context, path, category, folderID string) (*model.FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.client.Upload(ctx, path, folderID)
	if err != nil {
		return nil, err
	}
	duration := time.Since(start).Seconds()

	if res.GuestToken != "" && s.accountToken == "" {
		if s.store.SaveGuestToken(ctx, res.GuestToken) {
			s.accountToken = res.GuestToken
			if setter, ok := s.client.(interface{ SetAccountToken(string) }); ok {
				setter.SetAccountToken(res.GuestToken)
			}
			s.log.Info(ctx, "captured guest account token")
		}
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	speed := 0.0
	if duration > 0 {
		speed = float64(info.Size()) / duration
	}

	rec := &model.FileRecord{
		ID:             res.FileID,
		Name:           res.FileName,
		Size:           info.Size(),
		MimeType:       mimeType,
		UploadTime:     time.Now(),
		DownloadLink:   res.DownloadLink,
		FolderID:       res.FolderID,
		FolderCode:     res.FolderCode,
		Category:       category,
		AccountID:      s.accountToken,
		UploadSpeed:    speed,
		UploadDuration: duration,
	}
	if !s.store.SaveFile(ctx, rec) {
		fmt.Fprintf(s.out, "Warning: '%s' uploaded but could not be recorded locally.\n", rec.Name)
		s.log.Error(ctx, "uploaded file not recorded", "id", rec.ID, "name", rec.Name)
	}
	return rec, nil
}

func containsGlobMeta(s string) bool {
	for _, c := range s {
		if c == '*' || c == '?' || c == '[' {
			return true
		}
	}
	return false
}

// isTransportStream sniffs for the MPEG-TS sync byte pattern in .ts files.
func isTransportStream(path string) bool {
	if filepath.Ext(path) != ".ts" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 188*3)
	n, err := io.ReadFull(f, buf)
	if err != nil && n < 189 {
		return false
	}
	return buf[0] == 0x47 && buf[188] == 0x47
}
