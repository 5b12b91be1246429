package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const blobsDir = "blobs"

// BlobStore keeps uploaded files as plain files under the base path.
type BlobStore struct {
	base string
}

func NewBlobStore(basePath string) (*BlobStore, error) {
	base := filepath.Join(basePath, blobsDir)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("local: ensure blob path: %w", err)
	}
	return &BlobStore{base: base}, nil
}

func (b *BlobStore) file(path string) string {
	return filepath.Join(b.base, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}

// Upload streams r into place, reporting whole-file percentage as chunks
// land. A canceled context aborts mid-transfer and removes the partial
// file.
func (b *BlobStore) Upload(ctx context.Context, path string, r io.Reader, size int64, onProgress func(pct int)) (string, error) {
	if onProgress == nil {
		onProgress = func(int) {}
	}
	dst := b.file(path)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("local: ensure blob dir: %w", err)
	}
	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("local: create blob: %w", err)
	}

	onProgress(0)
	var written int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			f.Close()
			os.Remove(tmp)
			return "", err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				os.Remove(tmp)
				return "", fmt.Errorf("local: write blob: %w", werr)
			}
			written += int64(n)
			if size > 0 {
				pct := int(written * 100 / size)
				if pct > 100 {
					pct = 100
				}
				onProgress(pct)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.Close()
			os.Remove(tmp)
			return "", fmt.Errorf("local: read upload: %w", rerr)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("local: close blob: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("local: finalize blob: %w", err)
	}
	onProgress(100)
	return b.PublicURL(path), nil
}

func (b *BlobStore) Delete(_ context.Context, path string) error {
	if err := os.Remove(b.file(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local: delete blob %q: %w", path, err)
	}
	return nil
}

func (b *BlobStore) PublicURL(path string) string {
	return "file://" + filepath.ToSlash(b.file(path))
}
