package job

import (
	"strings"

	"rmoflow/pkg/timeutil"
)

// CriteriaEntry is one selection criterion with the drafted response.
type CriteriaEntry struct {
	Criterion string `json:"criterion"`
	Response  string `json:"response"`
}

// DocumentRef points at an uploaded document attached to a job. Removing a
// ref detaches the document from the job without deleting the record or blob.
type DocumentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	// Type tags the attachment: "official" or "self-submitted".
	Type string `json:"type,omitempty"`
}

// Job is one tracked application. Saved as a whole document; there is no
// field-level diffing on update.
type Job struct {
	ID string `json:"id,omitempty"`

	Title         string `json:"jobTitle"`
	Hospital      string `json:"hospital,omitempty"`
	HealthNetwork string `json:"healthNetwork,omitempty"`
	SourceURL     string `json:"sourceUrl,omitempty"`
	Location      string `json:"location,omitempty"`
	State         string `json:"state,omitempty"`
	// JobCode is the employer's requisition identifier, not our ID.
	JobCode         string          `json:"jobId,omitempty"`
	ApplicationType ApplicationType `json:"applicationType,omitempty"`
	Portal          string          `json:"portal,omitempty"`
	Specialty       string          `json:"specialty,omitempty"`
	RoleLevel       RoleLevel       `json:"roleLevel,omitempty"`

	ContactPerson string `json:"contactPerson,omitempty"`
	ContactEmail  string `json:"contactEmail,omitempty"`
	ContactPhone  string `json:"contactPhone,omitempty"`

	DetailNotes  string `json:"jobDetailNotes,omitempty"`
	TrackerNotes string `json:"jobTrackerNotes,omitempty"`

	Status Status `json:"status"`

	ClosingDate      *timeutil.Timestamp `json:"closingDate"`
	ClosingTimezone  string              `json:"closingDateTimezone,omitempty"`
	DateApplied      *timeutil.Timestamp `json:"dateApplied"`
	AppliedTimezone  string              `json:"dateAppliedTimezone,omitempty"`
	FollowUpDate     *timeutil.Timestamp `json:"followUpDate"`
	FollowUpTimezone string              `json:"followUpDateTimezone,omitempty"`
	InterviewDate    *timeutil.Timestamp `json:"interviewDate"`
	InterviewTimezone string             `json:"interviewDateTimezone,omitempty"`

	FollowUpComplete bool   `json:"followUpComplete"`
	InterviewType    string `json:"interviewType,omitempty"`
	ThankYouSent     bool   `json:"thankYouSent"`

	// CreatedAt is assigned server-side at first persist and never changes.
	CreatedAt timeutil.Timestamp `json:"createdAt"`

	SelectionCriteria []CriteriaEntry `json:"jobSelectionCriteria,omitempty"`
	Documents         []DocumentRef   `json:"documents,omitempty"`
}

// Duplicate derives a fresh draft from j: identity and server-assigned
// fields cleared, title suffixed, status reset, applied/closing dates
// nulled. Criteria and document references carry over.
func (j Job) Duplicate() Job {
	d := j
	d.ID = ""
	d.Title = j.Title + " (Copy)"
	d.Status = StatusIdentified
	d.DateApplied = nil
	d.ClosingDate = nil
	d.CreatedAt = timeutil.Timestamp{}
	d.SelectionCriteria = append([]CriteriaEntry(nil), j.SelectionCriteria...)
	d.Documents = append([]DocumentRef(nil), j.Documents...)
	return d
}

// SearchText assembles the lower-cased haystack for the dashboard's
// search-anything filter: every user-visible string field on the job.
func (j Job) SearchText() string {
	parts := []string{
		j.Title, j.Hospital, j.HealthNetwork, j.SourceURL, j.Location,
		j.State, j.JobCode, string(j.ApplicationType), j.Portal,
		j.Specialty, string(j.RoleLevel), j.ContactPerson, j.ContactEmail,
		j.ContactPhone, j.DetailNotes, j.TrackerNotes, string(j.Status),
		j.InterviewType,
	}
	for _, c := range j.SelectionCriteria {
		parts = append(parts, c.Criterion, c.Response)
	}
	for _, d := range j.Documents {
		parts = append(parts, d.Name)
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}

// Matches reports whether term (already lower-cased by the caller or not)
// appears anywhere in the job's searchable text.
func (j Job) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(j.SearchText(), term)
}
