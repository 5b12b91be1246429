// Package document describes metadata records for files held in blob
// storage. A record and its blob live and die together: deleting one without
// the other leaves an orphan.
package document

import "rmoflow/pkg/timeutil"

// Document is the metadata record for one uploaded file.
type Document struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name"`
	URL        string             `json:"url"`
	Path       string             `json:"path"`
	Size       int64              `json:"size"`
	MIMEType   string             `json:"type,omitempty"`
	UploadedAt timeutil.Timestamp `json:"uploadedAt"`
}
