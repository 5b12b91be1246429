package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"rmoflow/pkg/document"
	"rmoflow/pkg/experience"
	"rmoflow/pkg/job"
	"rmoflow/pkg/remote"
	"rmoflow/pkg/timeutil"
)

// Backup is the portable export format: applications, experiences, and
// document records. Document entries are metadata only; the blobs they
// point at do not travel with the file.
type Backup struct {
	Version     int                     `json:"version"`
	ExportedAt  timeutil.Timestamp      `json:"exportedAt"`
	Jobs        []job.Job               `json:"jobs"`
	Experiences []experience.Experience `json:"experiences"`
	Documents   []document.Document     `json:"documents"`
}

const backupVersion = 1

// DuplicatePolicy decides what bulk-add does when an incoming job matches
// an existing one on job code and application type.
type DuplicatePolicy string

const (
	// DuplicateSkip drops matching rows. The default.
	DuplicateSkip DuplicatePolicy = "skip"
	// DuplicateInsert adds matching rows anyway.
	DuplicateInsert DuplicatePolicy = "insert"
)

// BulkResult summarizes a bulk-add run. The settings page keeps the last
// one around so the user can see which rows were dropped.
type BulkResult struct {
	RanAt   timeutil.Timestamp
	Added   int
	Skipped []SkippedJob
}

// SkippedJob identifies a row the skip policy dropped.
type SkippedJob struct {
	JobCode  string
	Hospital string
}

// Export writes the whole cached state as JSON.
func (s *Service) Export(w io.Writer) error {
	b := Backup{
		Version:     backupVersion,
		ExportedAt:  timeutil.Timestamp{Time: s.now()},
		Jobs:        s.cache.Jobs(),
		Experiences: s.cache.Experiences(),
		Documents:   s.cache.Documents(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces the applications and experiences collections with the
// backup's contents. Both collections are cleared first; this is
// destructive and the caller is expected to have confirmed. Document
// records are export-only, their blobs cannot be restored from a file.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	uid, err := s.uid()
	if err != nil {
		return 0, err
	}
	b, err := decodeBackup(r)
	if err != nil {
		return 0, err
	}

	if jobs := s.cache.Jobs(); len(jobs) > 0 {
		ids := make([]string, 0, len(jobs))
		for _, j := range jobs {
			ids = append(ids, j.ID)
		}
		if err := s.store.BatchDelete(ctx, remote.JobsPath(uid), ids); err != nil {
			s.toast.Error("Import failed")
			return 0, fmt.Errorf("import: clear jobs: %w", err)
		}
	}
	if exps := s.cache.Experiences(); len(exps) > 0 {
		ids := make([]string, 0, len(exps))
		for _, e := range exps {
			ids = append(ids, e.ID)
		}
		if err := s.store.BatchDelete(ctx, remote.ExperiencesPath(uid), ids); err != nil {
			s.toast.Error("Import failed")
			return 0, fmt.Errorf("import: clear experiences: %w", err)
		}
	}

	for i, j := range b.Jobs {
		j.ID = ""
		if j.CreatedAt.IsZero() {
			j.CreatedAt = timeutil.Timestamp{Time: s.now()}
		}
		if _, err := s.store.Create(ctx, remote.JobsPath(uid), j); err != nil {
			s.toast.Error("Import failed")
			return i, fmt.Errorf("import job %d: %w", i, err)
		}
	}
	for i, e := range b.Experiences {
		e.ID = ""
		if e.CreatedAt.IsZero() {
			e.CreatedAt = timeutil.Timestamp{Time: s.now()}
		}
		if _, err := s.store.Create(ctx, remote.ExperiencesPath(uid), e); err != nil {
			s.toast.Error("Import failed")
			return len(b.Jobs), fmt.Errorf("import experience %d: %w", i, err)
		}
	}
	s.toast.Success(fmt.Sprintf("Imported %d applications and %d experiences",
		len(b.Jobs), len(b.Experiences)))
	return len(b.Jobs), nil
}

// BulkAdd appends the backup's applications to the existing collection.
// Rows matching an existing application on job code and application type
// follow the given policy.
func (s *Service) BulkAdd(ctx context.Context, r io.Reader, policy DuplicatePolicy) (BulkResult, error) {
	uid, err := s.uid()
	if err != nil {
		return BulkResult{}, err
	}
	b, err := decodeBackup(r)
	if err != nil {
		return BulkResult{}, err
	}
	if policy == "" {
		policy = DuplicateSkip
	}

	seen := make(map[string]bool)
	for _, j := range s.cache.Jobs() {
		seen[dupKey(j)] = true
	}

	res := BulkResult{RanAt: timeutil.Timestamp{Time: s.now()}}
	for i, j := range b.Jobs {
		key := dupKey(j)
		if policy == DuplicateSkip && key != "" && seen[key] {
			res.Skipped = append(res.Skipped, SkippedJob{JobCode: j.JobCode, Hospital: j.Hospital})
			continue
		}
		j.ID = ""
		if j.CreatedAt.IsZero() {
			j.CreatedAt = timeutil.Timestamp{Time: s.now()}
		}
		if _, err := s.store.Create(ctx, remote.JobsPath(uid), j); err != nil {
			s.toast.Error("Bulk add failed")
			return res, fmt.Errorf("bulk add job %d: %w", i, err)
		}
		seen[key] = true
		res.Added++
	}
	s.toast.Success(fmt.Sprintf("Added %d applications (%d skipped)", res.Added, len(res.Skipped)))
	return res, nil
}

// dupKey identifies a job for duplicate detection. Empty when the job has
// no code; such rows never count as duplicates.
func dupKey(j job.Job) string {
	code := strings.TrimSpace(strings.ToLower(j.JobCode))
	if code == "" {
		return ""
	}
	return code + "|" + strings.ToLower(string(j.ApplicationType))
}

func decodeBackup(r io.Reader) (Backup, error) {
	var b Backup
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return b, fmt.Errorf("parse backup: %w", err)
	}
	return b, nil
}
