// Package deletion coordinates removing files from the remote service and
// from the local metadata cache.
//
// All remote deletes in the program go through the Orchestrator. The core
// rule: in non-force mode the local record is only removed after the remote
// delete succeeded, so the cache never forgets a file that still exists
// remotely. The inverse failure, remote gone but local row stuck, is
// reported loudly instead of being swallowed.
package deletion

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/model"
	"github.com/gofup/gofup/internal/prompt"
	"github.com/gofup/gofup/internal/remote"
)

// Store is the slice of the metadata cache the orchestrator needs.
type Store interface {
	DeleteFile(ctx context.Context, id string) bool
	ListFiles(ctx context.Context, category string) []model.FileRecord
	OrphanedFiles(ctx context.Context) []model.FileRecord
	RemoveCategory(ctx context.Context, name string) bool
}

// Finder resolves a user token to a single file record.
type Finder interface {
	Find(ctx context.Context, token string) *model.FileRef
}

// Orchestrator runs single and batch deletions.
type Orchestrator struct {
	store    Store
	finder   Finder
	remote   remote.Client
	prompter prompt.Prompter
	out      io.Writer
	log      logging.Logger
}

func NewOrchestrator(store Store, finder Finder, client remote.Client,
	prompter prompt.Prompter, out io.Writer, log logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Orchestrator{
		store:    store,
		finder:   finder,
		remote:   client,
		prompter: prompter,
		out:      out,
		log:      log,
	}
}

// DeleteOne removes a single file identified by token. With force set only
// the local record is removed and the remote copy is left alone; otherwise
// the remote copy is deleted first and the local record only afterwards.
func (o *Orchestrator) DeleteOne(ctx context.Context, token string, force, autoConfirm bool) bool {
	ref := o.finder.Find(ctx, token)
	if ref == nil {
		return false
	}
	name := ref.File.Name

	if !autoConfirm {
		fmt.Fprintln(o.out, ref.Describe())
		var msg string
		if force {
			msg = fmt.Sprintf("This will ONLY delete '%s' from the local database, "+
				"NOT from the remote server. Are you sure? (yes/no):", name)
		} else {
			msg = fmt.Sprintf("Delete '%s' from the remote server and the local database? (yes/no):", name)
		}
		if !o.prompter.Confirm(msg, true) {
			fmt.Fprintln(o.out, "Cancelled.")
			return false
		}
	}

	if force {
		return o.deleteLocal(ctx, ref.File.ID, name)
	}

	if ref.File.AccountID == "" {
		fmt.Fprintf(o.out, "No account token is stored for '%s'; cannot delete it remotely.\n", name)
		fmt.Fprintln(o.out, "Use --force to delete just the local database entry.")
		o.log.Warn(ctx, "delete skipped, no account token", "id", ref.File.ID, "name", name)
		return false
	}

	if err := o.remote.Delete(ctx, ref.File.ID, ref.File.AccountID); err != nil {
		switch {
		case errors.Is(err, remote.ErrUnauthorized):
			fmt.Fprintf(o.out, "The server rejected the stored account token for '%s'.\n", name)
		case errors.Is(err, remote.ErrNotFound):
			fmt.Fprintf(o.out, "'%s' no longer exists on the remote server.\n", name)
		default:
			fmt.Fprintf(o.out, "Failed to delete '%s' from the remote server: %v\n", name, err)
		}
		if ref.File.DownloadLink != "" {
			fmt.Fprintf(o.out, "Check its status in a browser: %s\n", ref.File.DownloadLink)
		}
		fmt.Fprintln(o.out, "Re-run with --force to drop the local record anyway.")
		o.log.Error(ctx, "remote delete failed", "id", ref.File.ID, "name", name, "error", err)
		return false
	}

	if !o.store.DeleteFile(ctx, ref.File.ID) {
		fmt.Fprintf(o.out, "'%s' was deleted remotely but its local record could not be removed.\n", name)
		o.log.Error(ctx, "partial delete, remote gone but local record remains",
			"id", ref.File.ID, "name", name)
		return false
	}

	fmt.Fprintf(o.out, "Deleted '%s'.\n", name)
	o.log.Info(ctx, "deleted file", "id", ref.File.ID, "name", name, "force", false)
	return true
}

func (o *Orchestrator) deleteLocal(ctx context.Context, id, name string) bool {
	if !o.store.DeleteFile(ctx, id) {
		fmt.Fprintf(o.out, "Failed to delete '%s' from the local database.\n", name)
		return false
	}
	fmt.Fprintf(o.out, "Deleted '%s' from the local database.\n", name)
	o.log.Info(ctx, "deleted file", "id", id, "name", name, "force", true)
	return true
}

// DeleteBatch deletes each record in turn, confirmation already obtained by
// the caller. A panic while deleting one record counts as a failure and the
// batch moves on; a cancelled context stops the batch where it stands,
// leaving already-deleted items deleted.
func (o *Orchestrator) DeleteBatch(ctx context.Context, files []model.FileRecord, force bool) (deleted, failed int) {
	opID := uuid.NewString()
	o.log.Info(ctx, "starting batch delete", "op", opID, "files", len(files), "force", force)

	for _, f := range files {
		if ctx.Err() != nil {
			o.log.Warn(ctx, "batch delete interrupted", "op", opID,
				"deleted", deleted, "failed", failed)
			fmt.Fprintln(o.out, "Interrupted; remaining files were not deleted.")
			return deleted, failed
		}
		if o.deleteBatchItem(ctx, f.ID, force, opID) {
			deleted++
		} else {
			failed++
		}
	}

	o.log.Info(ctx, "batch delete finished", "op", opID, "deleted", deleted, "failed", failed)
	return deleted, failed
}

func (o *Orchestrator) deleteBatchItem(ctx context.Context, id string, force bool, opID string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error(ctx, "panic while deleting file", "op", opID, "id", id, "panic", r)
			fmt.Fprintf(o.out, "Error deleting file %s: %v\n", id, r)
			ok = false
		}
	}()
	return o.DeleteOne(ctx, id, force, true)
}

// DeleteCategoryFiles deletes every file in the category after one
// confirmation. Reports whether anything was deleted.
func (o *Orchestrator) DeleteCategoryFiles(ctx context.Context, name string, force bool) bool {
	files := o.store.ListFiles(ctx, name)
	if len(files) == 0 {
		fmt.Fprintf(o.out, "No files found in category '%s'.\n", name)
		return false
	}

	var msg string
	if force {
		msg = fmt.Sprintf("This will delete %d file entries for category '%s' from the "+
			"local database ONLY. Are you sure? (yes/no):", len(files), name)
	} else {
		msg = fmt.Sprintf("This will delete %d files in category '%s' from the remote "+
			"server and the local database. Are you sure? (yes/no):", len(files), name)
	}
	if !o.prompter.Confirm(msg, true) {
		fmt.Fprintln(o.out, "Cancelled.")
		return false
	}

	deleted, failed := o.DeleteBatch(ctx, files, force)
	o.printSummary(deleted, failed)
	return deleted > 0
}

// DeleteOrphaned deletes every file whose category no longer exists. The
// operation is doubly confirmed and reports progress per former category.
func (o *Orchestrator) DeleteOrphaned(ctx context.Context, force bool) bool {
	orphans := o.store.OrphanedFiles(ctx)
	if len(orphans) == 0 {
		fmt.Fprintln(o.out, "No orphaned files found.")
		return false
	}

	fmt.Fprintf(o.out, "Found %d orphaned files (their categories no longer exist):\n", len(orphans))
	sample := orphans
	if len(sample) > 5 {
		sample = sample[:5]
	}
	for _, f := range sample {
		fmt.Fprintf(o.out, "  - %s (category '%s')\n", f.Name, f.Category)
	}
	if len(orphans) > len(sample) {
		fmt.Fprintf(o.out, "  ... and %d more\n", len(orphans)-len(sample))
	}

	if !o.prompter.Confirm(
		fmt.Sprintf("Delete all %d orphaned files? (yes/no):", len(orphans)), true) {
		fmt.Fprintln(o.out, "Cancelled.")
		return false
	}
	if !o.prompter.Confirm("This cannot be undone. Really proceed? (yes/no):", true) {
		fmt.Fprintln(o.out, "Cancelled.")
		return false
	}

	byCategory := map[string][]model.FileRecord{}
	var order []string
	for _, f := range orphans {
		if _, seen := byCategory[f.Category]; !seen {
			order = append(order, f.Category)
		}
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	var deleted, failed int
	for _, cat := range order {
		group := byCategory[cat]
		fmt.Fprintf(o.out, "Deleting %d files from former category '%s'...\n", len(group), cat)
		d, f := o.DeleteBatch(ctx, group, force)
		deleted += d
		failed += f
		if ctx.Err() != nil {
			break
		}
	}

	o.printSummary(deleted, failed)
	return deleted > 0
}

// RemoveCategory removes the category row after confirmation, separately
// asking whether its files should be deleted too. The row is removed even
// when file deletion fails or is declined.
func (o *Orchestrator) RemoveCategory(ctx context.Context, name string, force bool) bool {
	if !o.prompter.Confirm(
		fmt.Sprintf("Remove category '%s'? (yes/no):", name), true) {
		fmt.Fprintln(o.out, "Cancelled.")
		return false
	}

	files := o.store.ListFiles(ctx, name)
	if len(files) > 0 {
		var msg string
		if force {
			msg = fmt.Sprintf("Also delete its %d file entries from the local database ONLY? (yes/no):", len(files))
		} else {
			msg = fmt.Sprintf("Also delete its %d files from the remote server and the local database? (yes/no):", len(files))
		}
		if o.prompter.Confirm(msg, true) {
			deleted, failed := o.DeleteBatch(ctx, files, force)
			o.printSummary(deleted, failed)
		} else {
			fmt.Fprintf(o.out, "Keeping %d files; they will show up as orphaned.\n", len(files))
		}
	}

	if !o.store.RemoveCategory(ctx, name) {
		fmt.Fprintf(o.out, "Failed to remove category '%s'.\n", name)
		return false
	}
	fmt.Fprintf(o.out, "Removed category '%s'.\n", name)
	o.log.Info(ctx, "removed category", "name", name)
	return true
}

func (o *Orchestrator) printSummary(deleted, failed int) {
	fmt.Fprintf(o.out, "%d deleted, %d failed.\n", deleted, failed)
}
