// Package supabase backs the blob contract with Supabase Storage over its
// REST API. Only file storage lives here; documents stay wherever the
// configured remote.Store keeps them.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// BlobStore uploads to one Supabase Storage bucket.
type BlobStore struct {
	projectID  string
	apiKey     string
	bucketName string
	httpClient *http.Client
}

func NewBlobStore(projectID, apiKey, bucketName string) *BlobStore {
	return &BlobStore{
		projectID:  projectID,
		apiKey:     apiKey,
		bucketName: bucketName,
		httpClient: &http.Client{},
	}
}

func (s *BlobStore) objectURL(path string) string {
	return fmt.Sprintf("https://%s.supabase.co/storage/v1/object/%s/%s",
		s.projectID, s.bucketName, path)
}

// Upload streams r to the bucket. The REST API gives no mid-transfer
// progress, so the callback sees 0 at start and 100 on completion; the
// progressReader in between reports what has left this process.
func (s *BlobStore) Upload(ctx context.Context, path string, r io.Reader, size int64, onProgress func(pct int)) (string, error) {
	if onProgress == nil {
		onProgress = func(int) {}
	}
	onProgress(0)

	body := io.Reader(r)
	if size > 0 {
		body = &progressReader{r: r, total: size, onProgress: onProgress}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(path), body)
	if err != nil {
		return "", fmt.Errorf("supabase: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")
	if size > 0 {
		req.ContentLength = size
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("supabase: upload failed with status %d: %s", resp.StatusCode, string(msg))
	}
	onProgress(100)
	return s.PublicURL(path), nil
}

func (s *BlobStore) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(path), nil)
	if err != nil {
		return fmt.Errorf("supabase: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase: delete failed with status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

func (s *BlobStore) PublicURL(path string) string {
	return fmt.Sprintf("https://%s.supabase.co/storage/v1/object/public/%s/%s",
		s.projectID, s.bucketName, path)
}

// progressReader reports whole-file percentage as the request body drains.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress func(pct int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 99 {
			// 100 is reserved for a confirmed upload.
			pct = 99
		}
		p.onProgress(pct)
	}
	return n, err
}
