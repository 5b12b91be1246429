package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/google/uuid"

	"rmoflow/pkg/document"
	"rmoflow/pkg/events"
	"rmoflow/pkg/job"
	"rmoflow/pkg/remote"
	"rmoflow/pkg/timeutil"
)

// UploadTask is one in-flight document upload. Cancel stops the transfer;
// a completion that races the cancel is discarded rather than persisted.
type UploadTask struct {
	ID     string
	cancel context.CancelFunc

	mu       sync.Mutex
	canceled bool
}

// Cancel aborts the upload. Safe to call more than once.
func (t *UploadTask) Cancel() {
	t.mu.Lock()
	t.canceled = true
	t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
}

// Canceled reports whether Cancel has been called.
func (t *UploadTask) Canceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

// UploadDocument starts a background upload and returns the running task.
// Progress and completion are reported through emit as messages keyed by
// the task id. The metadata record is created only after the blob lands,
// and never after a cancel.
func (s *Service) UploadDocument(ctx context.Context, name, mimeType string, r io.Reader, size int64, emit func(tea.Msg)) (*UploadTask, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrTitleRequired
	}
	uid, err := s.uid()
	if err != nil {
		return nil, err
	}
	if emit == nil {
		emit = func(tea.Msg) {}
	}

	ctx, cancel := context.WithCancel(ctx)
	task := &UploadTask{ID: uuid.New().String(), cancel: cancel}
	blobPath := remote.DocumentBlob(uid, s.now().UnixMilli(), name)

	go func() {
		defer cancel()
		url, err := s.blobs.Upload(ctx, blobPath, r, size, func(pct int) {
			emit(events.UploadProgressMsg{TaskID: task.ID, Pct: pct})
		})
		if task.Canceled() {
			// The transfer may have finished before the cancel took
			// effect; the record must still not appear.
			if err == nil {
				if derr := s.blobs.Delete(context.Background(), blobPath); derr != nil {
					s.log.WithError(derr).Warn("orphaned blob after canceled upload")
				}
			}
			emit(events.UploadDoneMsg{TaskID: task.ID, Err: context.Canceled})
			return
		}
		if err != nil {
			s.toast.Error("Upload failed")
			emit(events.UploadDoneMsg{TaskID: task.ID, Err: err})
			return
		}

		rec := document.Document{
			Name:       name,
			URL:        url,
			Path:       blobPath,
			Size:       size,
			MIMEType:   mimeType,
			UploadedAt: timeutil.Timestamp{Time: s.now()},
		}
		if _, err := s.store.Create(context.Background(), remote.DocumentsPath(uid), rec); err != nil {
			s.toast.Error("Upload failed")
			emit(events.UploadDoneMsg{TaskID: task.ID, Err: fmt.Errorf("create document record: %w", err)})
			return
		}
		s.toast.Success("Document uploaded")
		emit(events.UploadDoneMsg{TaskID: task.ID, URL: url})
	}()

	return task, nil
}

// UploadProfileImage replaces the avatar blob and mirrors the new URL to
// the profile document and the identity provider. Small enough to block.
func (s *Service) UploadProfileImage(ctx context.Context, r io.Reader, size int64) (string, error) {
	uid, err := s.uid()
	if err != nil {
		return "", err
	}
	url, err := s.blobs.Upload(ctx, remote.ProfileImageBlob(uid), r, size, nil)
	if err != nil {
		s.toast.Error("Could not upload the photo")
		return "", fmt.Errorf("upload profile image: %w", err)
	}
	if err := s.store.Update(ctx, remote.UserDoc(uid), map[string]any{"photoURL": url}); err != nil {
		return "", fmt.Errorf("save photo url: %w", err)
	}
	if err := s.id.UpdateProfileFields(ctx, map[string]string{"photoURL": url}); err != nil {
		s.log.WithError(err).Warn("identity photo not updated")
	}
	s.toast.Success("Photo updated")
	return url, nil
}

// DeleteDocument removes the blob first and the metadata record second, so
// a failure cannot leave a record pointing at a missing file unnoticed.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	uid, err := s.uid()
	if err != nil {
		return err
	}
	d, ok := s.cache.FindDocument(id)
	if !ok {
		return fmt.Errorf("delete document: %w", remote.ErrNotFound)
	}
	if d.Path != "" {
		if err := s.blobs.Delete(ctx, d.Path); err != nil {
			s.toast.Error("Could not delete the file")
			return fmt.Errorf("delete blob %s: %w", d.Path, err)
		}
	}
	if err := s.store.Delete(ctx, remote.DocumentDoc(uid, id)); err != nil {
		s.toast.Error("Could not delete the document")
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	s.toast.Success("Document deleted")
	return nil
}

// AttachDocument adds a reference to an uploaded document on a job.
// Attaching the same document twice is a no-op.
func (s *Service) AttachDocument(ctx context.Context, jobID, docID, refType string) error {
	uid, err := s.uid()
	if err != nil {
		return err
	}
	j, ok := s.cache.FindJob(jobID)
	if !ok {
		return fmt.Errorf("attach document: %w", remote.ErrNotFound)
	}
	d, ok := s.cache.FindDocument(docID)
	if !ok {
		return fmt.Errorf("attach document: %w", remote.ErrNotFound)
	}
	for _, ref := range j.Documents {
		if ref.ID == docID {
			return nil
		}
	}
	refs := append(append([]job.DocumentRef(nil), j.Documents...), job.DocumentRef{
		ID:   d.ID,
		Name: d.Name,
		URL:  d.URL,
		Type: refType,
	})
	fields := map[string]any{"documents": refs}
	if err := s.store.Update(ctx, remote.JobDoc(uid, jobID), fields); err != nil {
		return fmt.Errorf("attach document to %s: %w", jobID, err)
	}
	return nil
}

// DetachDocument drops the reference from the job. The document record and
// blob stay untouched.
func (s *Service) DetachDocument(ctx context.Context, jobID, docID string) error {
	uid, err := s.uid()
	if err != nil {
		return err
	}
	j, ok := s.cache.FindJob(jobID)
	if !ok {
		return fmt.Errorf("detach document: %w", remote.ErrNotFound)
	}
	refs := make([]job.DocumentRef, 0, len(j.Documents))
	for _, ref := range j.Documents {
		if ref.ID != docID {
			refs = append(refs, ref)
		}
	}
	if len(refs) == len(j.Documents) {
		return nil
	}
	fields := map[string]any{"documents": refs}
	if err := s.store.Update(ctx, remote.JobDoc(uid, jobID), fields); err != nil {
		return fmt.Errorf("detach document from %s: %w", jobID, err)
	}
	return nil
}
