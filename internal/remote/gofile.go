package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofup/gofup/internal/logging"
)

const (
	apiBaseURL = "https://api.gofile.io"
	uploadURL  = "https://upload.gofile.io/uploadFile"
)

// GoFile is the production Client implementation.
type GoFile struct {
	http      *http.Client
	log       logging.Logger
	baseURL   string
	uploadURL string

	// AccountToken, when set, attributes uploads to that account instead
	// of creating a fresh guest account per upload.
	AccountToken string
}

// NewGoFile returns a client. A nil httpClient gets a default with a long
// timeout suitable for large uploads.
func NewGoFile(accountToken string, httpClient *http.Client, log logging.Logger) *GoFile {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Minute}
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &GoFile{
		http:         httpClient,
		log:          log,
		baseURL:      apiBaseURL,
		uploadURL:    uploadURL,
		AccountToken: accountToken,
	}
}

// SetAccountToken switches the token used for subsequent uploads, typically
// after a guest token was captured from an upload response.
func (g *GoFile) SetAccountToken(token string) {
	g.AccountToken = token
}

type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type uploadData struct {
	ID               string `json:"id"`
	FileID           string `json:"fileId"`
	Code             string `json:"code"`
	FileName         string `json:"fileName"`
	DownloadPage     string `json:"downloadPage"`
	ParentFolder     string `json:"parentFolder"`
	ParentFolderCode string `json:"parentFolderCode"`
	GuestToken       string `json:"guestToken"`
}

// Upload sends the file at path via multipart POST. Success requires the
// response to carry both a file ID and a download page; anything else is an
// error even when the HTTP exchange itself worked.
func (g *GoFile) Upload(ctx context.Context, path, folderID string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fileName := sanitizeFileName(filepath.Base(path))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if g.AccountToken != "" {
		if err := w.WriteField("token", g.AccountToken); err != nil {
			return nil, fmt.Errorf("build upload form: %w", err)
		}
	}
	if folderID != "" {
		if err := w.WriteField("folderId", folderID); err != nil {
			return nil, fmt.Errorf("build upload form: %w", err)
		}
	}

	mimeType := mime.TypeByExtension(filepath.Ext(fileName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", fileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload %s: server returned %s", fileName, resp.Status)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if envelope.Status != "ok" {
		return nil, fmt.Errorf("upload %s: status %q", fileName, envelope.Status)
	}

	var data uploadData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	fileID := data.ID
	if fileID == "" {
		fileID = data.FileID
	}
	if fileID == "" {
		fileID = data.Code
	}
	if fileID == "" || data.DownloadPage == "" {
		return nil, fmt.Errorf("upload %s: incomplete response from server", fileName)
	}

	g.log.Info(ctx, "uploaded file",
		"name", fileName, "id", fileID, "link", data.DownloadPage)

	return &UploadResult{
		FileID:       fileID,
		FileName:     fileName,
		DownloadLink: data.DownloadPage,
		FolderID:     data.ParentFolder,
		FolderCode:   data.ParentFolderCode,
		GuestToken:   data.GuestToken,
	}, nil
}

// Delete removes the content with the given ID.
func (g *GoFile) Delete(ctx context.Context, fileID, accountToken string) error {
	if accountToken == "" {
		return ErrUnauthorized
	}

	payload, err := json.Marshal(map[string]string{"contentsId": fileID})
	if err != nil {
		return fmt.Errorf("encode delete request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		g.baseURL+"/contents", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accountToken)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete %s: server returned %s", fileID, resp.Status)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode delete response: %w", err)
	}
	if envelope.Status != "ok" {
		return fmt.Errorf("delete %s: status %q", fileID, envelope.Status)
	}

	g.log.Info(ctx, "deleted remote content", "id", fileID)
	return nil
}

var (
	unsafeChars  = regexp.MustCompile(`[^\w\-.]`)
	repeatedSeps = regexp.MustCompile(`[_\-.]{2,}`)
)

// sanitizeFileName replaces characters the upload endpoint mishandles.
func sanitizeFileName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = repeatedSeps.ReplaceAllString(s, "_")
	if s == "" || s == "." || strings.Trim(s, "_") == "" {
		s = "file"
	}
	return s
}
