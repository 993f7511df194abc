package deletion

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/model"
	"github.com/gofup/gofup/internal/prompt"
	"github.com/gofup/gofup/internal/remote"
)

type fakeStore struct {
	files      map[string]model.FileRecord
	categories map[string]bool

	failDeletes map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		files:       map[string]model.FileRecord{},
		categories:  map[string]bool{},
		failDeletes: map[string]bool{},
	}
}

func (s *fakeStore) add(f model.FileRecord) { s.files[f.ID] = f }

func (s *fakeStore) DeleteFile(ctx context.Context, id string) bool {
	if s.failDeletes[id] {
		return false
	}
	if _, ok := s.files[id]; !ok {
		return false
	}
	delete(s.files, id)
	return true
}

func (s *fakeStore) ListFiles(ctx context.Context, category string) []model.FileRecord {
	var out []model.FileRecord
	for _, f := range s.files {
		if category == "" || f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

func (s *fakeStore) OrphanedFiles(ctx context.Context) []model.FileRecord {
	var out []model.FileRecord
	for _, f := range s.files {
		if f.Category != "" && !s.categories[f.Category] {
			out = append(out, f)
		}
	}
	return out
}

func (s *fakeStore) RemoveCategory(ctx context.Context, name string) bool {
	if !s.categories[name] {
		return false
	}
	delete(s.categories, name)
	return true
}

type fakeFinder struct {
	store   *fakeStore
	panicOn string
	stale   *model.FileRef
}

func (f *fakeFinder) Find(ctx context.Context, token string) *model.FileRef {
	if token == f.panicOn {
		panic("lookup exploded")
	}
	if f.stale != nil {
		return f.stale
	}
	rec, ok := f.store.files[token]
	if !ok {
		return nil
	}
	return &model.FileRef{File: rec, ID: rec.ID}
}

type fakeRemote struct {
	calls []string
	errs  map[string]error
}

func (r *fakeRemote) Upload(ctx context.Context, path, folderID string) (*remote.UploadResult, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRemote) Delete(ctx context.Context, fileID, accountToken string) error {
	r.calls = append(r.calls, fileID)
	return r.errs[fileID]
}

func newTestOrchestrator(store *fakeStore, p prompt.Prompter) (*Orchestrator, *fakeRemote, *fakeFinder, *bytes.Buffer) {
	var out bytes.Buffer
	if p == nil {
		p = &prompt.Scripted{}
	}
	rem := &fakeRemote{errs: map[string]error{}}
	finder := &fakeFinder{store: store}
	o := NewOrchestrator(store, finder, rem, p, &out, logging.NopLogger{})
	return o, rem, finder, &out
}

func record(id, name, category, accountID string) model.FileRecord {
	return model.FileRecord{
		ID: id, Name: name, Category: category, AccountID: accountID,
		DownloadLink: "https://gofile.io/d/" + id,
	}
}

func TestDeleteOneNotFound(t *testing.T) {
	o, rem, _, _ := newTestOrchestrator(newFakeStore(), nil)
	assert.False(t, o.DeleteOne(context.Background(), "ghost", false, true))
	assert.Empty(t, rem.calls)
}

func TestDeleteOneForceNeverCallsRemote(t *testing.T) {
	s := newFakeStore()
	s.add(record("f1", "a.txt", "docs", "tok"))
	o, rem, _, _ := newTestOrchestrator(s, nil)

	assert.True(t, o.DeleteOne(context.Background(), "f1", true, true))
	assert.Empty(t, rem.calls)
	assert.Empty(t, s.files)
}

func TestDeleteOneDeclinedConfirmation(t *testing.T) {
	s := newFakeStore()
	s.add(record("f1", "a.txt", "", "tok"))
	p := &prompt.Scripted{Confirms: []bool{false}}
	o, rem, _, _ := newTestOrchestrator(s, p)

	assert.False(t, o.DeleteOne(context.Background(), "f1", false, false))
	assert.Empty(t, rem.calls)
	assert.Len(t, s.files, 1)
}

func TestDeleteOneNoAccountToken(t *testing.T) {
	s := newFakeStore()
	s.add(record("f1", "a.txt", "", ""))
	o, rem, _, out := newTestOrchestrator(s, nil)

	assert.False(t, o.DeleteOne(context.Background(), "f1", false, true))
	assert.Empty(t, rem.calls)
	assert.Len(t, s.files, 1)
	assert.Contains(t, out.String(), "--force")
}

func TestDeleteOneRemoteFailurePreservesLocal(t *testing.T) {
	s := newFakeStore()
	s.add(record("f1", "a.txt", "", "tok"))
	o, rem, _, out := newTestOrchestrator(s, nil)
	rem.errs["f1"] = remote.ErrUnauthorized

	assert.False(t, o.DeleteOne(context.Background(), "f1", false, true))
	assert.Len(t, s.files, 1)
	assert.Contains(t, out.String(), "rejected the stored account token")
}

func TestDeleteOneRemoteOkLocalFail(t *testing.T) {
	s := newFakeStore()
	s.add(record("f1", "a.txt", "", "tok"))
	s.failDeletes["f1"] = true
	o, rem, _, out := newTestOrchestrator(s, nil)

	assert.False(t, o.DeleteOne(context.Background(), "f1", false, true))
	assert.Equal(t, []string{"f1"}, rem.calls)
	assert.Contains(t, out.String(), "deleted remotely but its local record")
}

func TestDeleteOneRemoteOkAlreadyRemovedRow(t *testing.T) {
	s := newFakeStore()
	f := record("f1", "a.txt", "", "tok")
	o, rem, finder, out := newTestOrchestrator(s, nil)

	// The row vanished between lookup and delete; remote succeeds but the
	// local delete finds nothing to remove.
	finder.stale = &model.FileRef{File: f, ID: "f1"}

	assert.False(t, o.DeleteOne(context.Background(), "f1", false, true))
	assert.Equal(t, []string{"f1"}, rem.calls)
	assert.Contains(t, out.String(), "deleted remotely but its local record")
}

func TestDeleteOneSuccess(t *testing.T) {
	s := newFakeStore()
	s.add(record("f1", "a.txt", "", "tok"))
	o, rem, _, _ := newTestOrchestrator(s, nil)

	assert.True(t, o.DeleteOne(context.Background(), "f1", false, true))
	assert.Equal(t, []string{"f1"}, rem.calls)
	assert.Empty(t, s.files)
}

func TestDeleteBatchPartialFailure(t *testing.T) {
	s := newFakeStore()
	files := make([]model.FileRecord, 0, 5)
	for _, id := range []string{"f1", "f2", "f3", "f4", "f5"} {
		f := record(id, id+".txt", "docs", "tok")
		s.add(f)
		files = append(files, f)
	}
	o, _, finder, _ := newTestOrchestrator(s, nil)
	finder.panicOn = "f3"

	deleted, failed := o.DeleteBatch(context.Background(), files, true)
	assert.Equal(t, 4, deleted)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 5, deleted+failed)
	assert.Len(t, s.files, 1)
}

func TestDeleteBatchCancelledContext(t *testing.T) {
	s := newFakeStore()
	var files []model.FileRecord
	for _, id := range []string{"f1", "f2", "f3"} {
		f := record(id, id+".txt", "docs", "tok")
		s.add(f)
		files = append(files, f)
	}
	o, _, _, _ := newTestOrchestrator(s, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deleted, failed := o.DeleteBatch(ctx, files, true)
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, failed)
	assert.Len(t, s.files, 3)
}

func TestDeleteCategoryFiles(t *testing.T) {
	s := newFakeStore()
	s.add(record("f1", "a.txt", "docs", "tok"))
	s.add(record("f2", "b.txt", "docs", "tok"))
	s.add(record("f3", "c.txt", "music", "tok"))
	p := &prompt.Scripted{Confirms: []bool{true}}
	o, _, _, _ := newTestOrchestrator(s, p)

	assert.True(t, o.DeleteCategoryFiles(context.Background(), "docs", true))
	assert.Len(t, s.files, 1)

	assert.False(t, o.DeleteCategoryFiles(context.Background(), "docs", true))
}

func TestDeleteOrphanedDoubleConfirm(t *testing.T) {
	s := newFakeStore()
	s.categories["docs"] = true
	s.add(record("f1", "a.txt", "docs", "tok"))
	s.add(record("f2", "b.txt", "ghost", "tok"))
	s.add(record("f3", "c.txt", "ghost", "tok"))

	p := &prompt.Scripted{Confirms: []bool{true, false}}
	o, _, _, _ := newTestOrchestrator(s, p)
	assert.False(t, o.DeleteOrphaned(context.Background(), true))
	assert.Len(t, s.files, 3)

	p = &prompt.Scripted{Confirms: []bool{true, true}}
	o, _, _, _ = newTestOrchestrator(s, p)
	assert.True(t, o.DeleteOrphaned(context.Background(), true))
	assert.Len(t, s.files, 1)
}

func TestRemoveCategoryKeepsFilesWhenDeclined(t *testing.T) {
	s := newFakeStore()
	s.categories["docs"] = true
	s.add(record("f1", "a.txt", "docs", "tok"))

	p := &prompt.Scripted{Confirms: []bool{true, false}}
	o, _, _, out := newTestOrchestrator(s, p)

	assert.True(t, o.RemoveCategory(context.Background(), "docs", true))
	assert.False(t, s.categories["docs"])
	assert.Len(t, s.files, 1)
	assert.Contains(t, out.String(), "orphaned")
}

func TestRemoveCategoryCascade(t *testing.T) {
	s := newFakeStore()
	s.categories["docs"] = true
	s.add(record("f1", "a.txt", "docs", "tok"))
	s.add(record("f2", "b.txt", "docs", "tok"))

	p := &prompt.Scripted{Confirms: []bool{true, true}}
	o, _, _, _ := newTestOrchestrator(s, p)

	assert.True(t, o.RemoveCategory(context.Background(), "docs", true))
	assert.False(t, s.categories["docs"])
	assert.Empty(t, s.files)
}

func TestEndToEndForceDelete(t *testing.T) {
	s := newFakeStore()
	s.categories["docs"] = true
	s.add(record("f1", "a.txt", "docs", "tok"))
	o, rem, _, _ := newTestOrchestrator(s, nil)

	require.Len(t, s.ListFiles(context.Background(), "docs"), 1)
	assert.True(t, o.DeleteOne(context.Background(), "f1", true, true))
	assert.Empty(t, s.ListFiles(context.Background(), "docs"))
	assert.Empty(t, rem.calls)
}
