// Package events defines the typed messages flowing between the cache, the
// session, and whatever surface is rendering (TUI, tests). All messages are
// usable directly as Bubble Tea msgs.
package events

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"rmoflow/pkg/remind"
	"rmoflow/pkg/remote"
)

// Collection identifies one cache slot.
type Collection string

const (
	CollectionJobs        Collection = "jobs"
	CollectionExperiences Collection = "experiences"
	CollectionDocuments   Collection = "documents"
	CollectionProfile     Collection = "profile"
)

// CacheUpdatedMsg announces that a cache slot was replaced by a subscription
// delivery.
type CacheUpdatedMsg struct {
	Collection Collection
	// Count is the number of items now in the slot (1/0 for the profile).
	Count int
}

// Describe renders the update for logs.
func (m CacheUpdatedMsg) Describe() string {
	return fmt.Sprintf("collection:%q count:%d", m.Collection, m.Count)
}

// RemindersMsg carries the freshly recomputed urgent set.
type RemindersMsg struct {
	Items []remind.Urgent
}

// AuthChangedMsg announces a sign-in (User set) or sign-out (User nil).
type AuthChangedMsg struct {
	User *remote.User
}

// ToastLevel grades a toast notification.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

// ToastMsg is a transient, auto-dismissing notification.
type ToastMsg struct {
	Level ToastLevel
	Text  string
}

// UploadProgressMsg reports document upload progress, 0-100.
type UploadProgressMsg struct {
	TaskID string
	Pct    int
}

// UploadDoneMsg terminates an upload task; Err is nil on success.
type UploadDoneMsg struct {
	TaskID string
	URL    string
	Err    error
}

// NavigatedMsg announces that the router switched pages.
type NavigatedMsg struct {
	Page string
}

// Cmd wraps any message into a tea.Cmd for callers emitting from an Update.
func Cmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
