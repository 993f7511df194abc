package upload

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/model"
	"github.com/gofup/gofup/internal/prompt"
	"github.com/gofup/gofup/internal/remote"
)

type fakeStore struct {
	categories map[string]model.Category
	files      []model.FileRecord
	guestToken string
}

func newFakeStore() *fakeStore {
	return &fakeStore{categories: map[string]model.Category{}}
}

func (s *fakeStore) GetCategory(ctx context.Context, name string) *model.Category {
	if c, ok := s.categories[name]; ok {
		return &c
	}
	return nil
}

func (s *fakeStore) SaveCategory(ctx context.Context, name, folderID, folderCode string, createdAt time.Time) bool {
	s.categories[name] = model.Category{Name: name, FolderID: folderID, FolderCode: folderCode, CreatedAt: createdAt}
	return true
}

func (s *fakeStore) SaveFile(ctx context.Context, f *model.FileRecord) bool {
	if f.ID == "" || f.Name == "" || f.DownloadLink == "" {
		return false
	}
	s.files = append(s.files, *f)
	return true
}

func (s *fakeStore) GuestToken(ctx context.Context) string { return s.guestToken }

func (s *fakeStore) SaveGuestToken(ctx context.Context, v string) bool {
	s.guestToken = v
	return true
}

type fakeClient struct {
	results []remote.UploadResult
	errs    []error
	folders []string
	token   string
}

func (c *fakeClient) Upload(ctx context.Context, path, folderID string) (*remote.UploadResult, error) {
	c.folders = append(c.folders, folderID)
	i := len(c.folders) - 1
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	res := c.results[i]
	return &res, nil
}

func (c *fakeClient) Delete(ctx context.Context, fileID, accountToken string) error {
	return errors.New("not implemented")
}

func (c *fakeClient) SetAccountToken(token string) { c.token = token }

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestService(store *fakeStore, client *fakeClient, token string) (*Service, *bytes.Buffer) {
	var out bytes.Buffer
	svc := NewService(store, client, &prompt.Scripted{}, token, &out, logging.NopLogger{})
	return svc, &out
}

func TestPrepareFilesSkipsMissing(t *testing.T) {
	svc, out := newTestService(newFakeStore(), &fakeClient{}, "")
	path := writeTemp(t, "a.txt", "x")

	files := svc.PrepareFiles([]string{path, "/nope/missing.txt"}, false)
	assert.Equal(t, []string{path}, files)
	assert.Contains(t, out.String(), "file not found")
}

func TestPrepareFilesGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	svc, _ := newTestService(newFakeStore(), &fakeClient{}, "")

	files := svc.PrepareFiles([]string{filepath.Join(dir, "*.txt")}, false)
	assert.Len(t, files, 2)
}

func TestPrepareFilesDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.txt"), []byte("x"), 0o600))

	svc, out := newTestService(newFakeStore(), &fakeClient{}, "")

	assert.Empty(t, svc.PrepareFiles([]string{dir}, false))
	assert.Contains(t, out.String(), "use -r")

	files := svc.PrepareFiles([]string{dir}, true)
	assert.Len(t, files, 2)
}

func TestUploadBatchRecordsOnSuccessOnly(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{
		results: []remote.UploadResult{
			{FileID: "f1", FileName: "a.txt", DownloadLink: "https://gofile.io/d/a"},
			{},
		},
		errs: []error{nil, errors.New("server returned 500")},
	}
	svc, _ := newTestService(store, client, "tok")

	a := writeTemp(t, "a.txt", "hello")
	b := writeTemp(t, "b.txt", "world")

	uploaded, failed, records := svc.UploadBatch(context.Background(), []string{a, b}, "")
	assert.Equal(t, 1, uploaded)
	assert.Equal(t, 1, failed)
	require.Len(t, records, 1)
	assert.Equal(t, "f1", records[0].ID)
	assert.Equal(t, "tok", records[0].AccountID)
	assert.Len(t, store.files, 1)
}

func TestUploadBatchCreatesCategoryFolder(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{
		results: []remote.UploadResult{
			{FileID: "f1", FileName: "a.txt", DownloadLink: "l1", FolderID: "folder-1", FolderCode: "code-1"},
			{FileID: "f2", FileName: "b.txt", DownloadLink: "l2", FolderID: "folder-1", FolderCode: "code-1"},
		},
	}
	svc, out := newTestService(store, client, "tok")

	a := writeTemp(t, "a.txt", "hello")
	b := writeTemp(t, "b.txt", "world")

	uploaded, failed, _ := svc.UploadBatch(context.Background(), []string{a, b}, "docs")
	assert.Equal(t, 2, uploaded)
	assert.Equal(t, 0, failed)

	// First upload has no folder yet, second reuses the one the server made.
	assert.Equal(t, []string{"", "folder-1"}, client.folders)
	require.Contains(t, store.categories, "docs")
	assert.Equal(t, "folder-1", store.categories["docs"].FolderID)
	assert.Contains(t, out.String(), "Created new folder for category 'docs'")
}

func TestUploadBatchReusesExistingCategoryFolder(t *testing.T) {
	store := newFakeStore()
	store.SaveCategory(context.Background(), "docs", "folder-9", "code-9", time.Now())
	client := &fakeClient{
		results: []remote.UploadResult{
			{FileID: "f1", FileName: "a.txt", DownloadLink: "l1", FolderID: "folder-9"},
		},
	}
	svc, _ := newTestService(store, client, "tok")

	a := writeTemp(t, "a.txt", "hello")
	uploaded, _, _ := svc.UploadBatch(context.Background(), []string{a}, "docs")
	assert.Equal(t, 1, uploaded)
	assert.Equal(t, []string{"folder-9"}, client.folders)
}

func TestUploadCapturesGuestToken(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{
		results: []remote.UploadResult{
			{FileID: "f1", FileName: "a.txt", DownloadLink: "l1", GuestToken: "guest-1"},
		},
	}
	svc, _ := newTestService(store, client, "")

	a := writeTemp(t, "a.txt", "hello")
	_, _, records := svc.UploadBatch(context.Background(), []string{a}, "")

	assert.Equal(t, "guest-1", store.guestToken)
	assert.Equal(t, "guest-1", client.token)
	require.Len(t, records, 1)
	assert.Equal(t, "guest-1", records[0].AccountID)
}

func TestUploadBatchCancelledContext(t *testing.T) {
	store := newFakeStore()
	svc, out := newTestService(store, &fakeClient{}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := writeTemp(t, "a.txt", "hello")
	uploaded, failed, _ := svc.UploadBatch(ctx, []string{a}, "")
	assert.Equal(t, 0, uploaded)
	assert.Equal(t, 0, failed)
	assert.Contains(t, out.String(), "Interrupted")
}
