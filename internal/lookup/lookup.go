// Package lookup finds a single file record from a user-supplied token,
// which may be a file ID, a serial position from the listing, or a file
// name.
package lookup

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/model"
	"github.com/gofup/gofup/internal/prompt"
)

// Store is the slice of the metadata cache the finder needs.
type Store interface {
	GetFile(ctx context.Context, id string) *model.FileRecord
	ListFiles(ctx context.Context, category string) []model.FileRecord
}

// Finder resolves tokens to file records.
type Finder struct {
	store    Store
	prompter prompt.Prompter
	out      io.Writer
	log      logging.Logger
}

func NewFinder(store Store, prompter prompt.Prompter, out io.Writer, log logging.Logger) *Finder {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Finder{store: store, prompter: prompter, out: out, log: log}
}

// Find resolves token in strict order: exact file ID first, then serial
// position when the token is all digits, then exact file name. A numeric
// token that misses both an ID and a serial position never falls through
// to name matching, so a file named "3" cannot shadow position 3 and an
// all-digit ID is never misread as a serial. Returns nil when nothing
// matches or the user cancels a disambiguation prompt.
func (f *Finder) Find(ctx context.Context, token string) *model.FileRef {
	if token == "" {
		return nil
	}

	if rec := f.store.GetFile(ctx, token); rec != nil {
		return &model.FileRef{File: *rec, ID: rec.ID}
	}

	if serial, err := strconv.Atoi(token); err == nil {
		files := f.store.ListFiles(ctx, "")
		if serial < 1 || serial > len(files) {
			fmt.Fprintf(f.out, "No file with ID or serial number '%s'.\n", token)
			return nil
		}
		rec := files[serial-1]
		return &model.FileRef{File: rec, ID: rec.ID, SerialID: serial}
	}

	var candidates []model.FileRecord
	for _, rec := range f.store.ListFiles(ctx, "") {
		if rec.Name == token {
			candidates = append(candidates, rec)
		}
	}

	switch len(candidates) {
	case 0:
		fmt.Fprintf(f.out, "No file named '%s'.\n", token)
		return nil
	case 1:
		return &model.FileRef{File: candidates[0], ID: candidates[0].ID}
	}

	options := make([]string, len(candidates))
	for i, rec := range candidates {
		category := rec.Category
		if category == "" {
			category = "(none)"
		}
		options[i] = fmt.Sprintf("%s  category: %s  uploaded: %s",
			rec.Name, category, rec.UploadTime.Format("2006-01-02 15:04"))
	}
	idx, ok := f.prompter.Choose(
		fmt.Sprintf("%d files are named '%s':", len(candidates), token), options)
	if !ok {
		fmt.Fprintln(f.out, "Cancelled.")
		return nil
	}
	rec := candidates[idx]
	return &model.FileRef{File: rec, ID: rec.ID}
}
