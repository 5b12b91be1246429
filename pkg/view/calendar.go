package view

import (
	"time"

	"rmoflow/pkg/job"
)

// EventKind tags a calendar entry.
type EventKind string

const (
	EventClosing   EventKind = "closing"
	EventFollowUp  EventKind = "follow-up"
	EventInterview EventKind = "interview"
)

// CalendarEvent is one dated marker on the dashboard calendar, linking back
// to its job.
type CalendarEvent struct {
	JobID string
	Title string
	Kind  EventKind
	At    time.Time
}

// CalendarEvents flattens a jobs snapshot into calendar markers: closing
// dates (labelled Closed once lapsed), pending follow-ups, and interviews.
func CalendarEvents(jobs []job.Job, now time.Time) []CalendarEvent {
	var events []CalendarEvent
	for _, j := range jobs {
		if j.ClosingDate != nil {
			label := "Closes: " + j.Title
			if j.ClosingDate.Before(now) {
				label = "Closed: " + j.Title
			}
			events = append(events, CalendarEvent{JobID: j.ID, Title: label, Kind: EventClosing, At: j.ClosingDate.Time})
		}
		if j.FollowUpDate != nil && !j.FollowUpComplete {
			events = append(events, CalendarEvent{JobID: j.ID, Title: "Follow-Up: " + j.Title, Kind: EventFollowUp, At: j.FollowUpDate.Time})
		}
		if j.InterviewDate != nil {
			events = append(events, CalendarEvent{JobID: j.ID, Title: "Interview: " + j.Title, Kind: EventInterview, At: j.InterviewDate.Time})
		}
	}
	return events
}
