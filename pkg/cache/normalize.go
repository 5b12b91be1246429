package cache

import (
	"encoding/json"
	"fmt"

	"rmoflow/pkg/document"
	"rmoflow/pkg/experience"
	"rmoflow/pkg/job"
	"rmoflow/pkg/profile"
	"rmoflow/pkg/remote"
)

// The normalizers turn raw store deliveries into entity values: document ids
// attached, wire timestamps already native via timeutil.Timestamp. A doc
// that fails to decode is dropped with an error rather than poisoning the
// whole snapshot.

// NormalizeJobs decodes a jobs collection delivery.
func NormalizeJobs(d remote.Delivery) ([]job.Job, error) {
	out := make([]job.Job, 0, len(d.Docs))
	for _, doc := range d.Docs {
		var j job.Job
		if err := json.Unmarshal(doc.Data, &j); err != nil {
			return out, fmt.Errorf("normalize job %s: %w", doc.ID, err)
		}
		j.ID = doc.ID
		out = append(out, j)
	}
	return out, nil
}

// NormalizeExperiences decodes an experiences collection delivery.
func NormalizeExperiences(d remote.Delivery) ([]experience.Experience, error) {
	out := make([]experience.Experience, 0, len(d.Docs))
	for _, doc := range d.Docs {
		var e experience.Experience
		if err := json.Unmarshal(doc.Data, &e); err != nil {
			return out, fmt.Errorf("normalize experience %s: %w", doc.ID, err)
		}
		e.ID = doc.ID
		out = append(out, e)
	}
	return out, nil
}

// NormalizeDocuments decodes a documents collection delivery.
func NormalizeDocuments(d remote.Delivery) ([]document.Document, error) {
	out := make([]document.Document, 0, len(d.Docs))
	for _, doc := range d.Docs {
		var rec document.Document
		if err := json.Unmarshal(doc.Data, &rec); err != nil {
			return out, fmt.Errorf("normalize document %s: %w", doc.ID, err)
		}
		rec.ID = doc.ID
		out = append(out, rec)
	}
	return out, nil
}

// NormalizeProfile decodes a profile document delivery; nil when absent.
func NormalizeProfile(d remote.Delivery) (*profile.Profile, error) {
	if d.Doc == nil {
		return nil, nil
	}
	var p profile.Profile
	if err := json.Unmarshal(d.Doc.Data, &p); err != nil {
		return nil, fmt.Errorf("normalize profile %s: %w", d.Doc.ID, err)
	}
	p.ID = d.Doc.ID
	return &p, nil
}
