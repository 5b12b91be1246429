// Package profile models the signed-in user's mirrored identity document and
// display preferences.
package profile

import (
	"strings"
	"unicode/utf8"

	"rmoflow/pkg/timeutil"
)

// Theme selects the UI palette.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Preferences are the user's persisted display settings.
type Preferences struct {
	Theme Theme `json:"theme,omitempty"`
	// Timezone is an IANA zone name, e.g. "Australia/Sydney".
	Timezone string `json:"timezone,omitempty"`
}

// Profile mirrors the identity provider's profile into the document store.
// Email is owned by the identity provider and never edited here.
type Profile struct {
	ID        string             `json:"id,omitempty"`
	FullName  string             `json:"fullName"`
	FirstName string             `json:"firstName,omitempty"`
	LastName  string             `json:"lastName,omitempty"`
	Email     string             `json:"email"`
	PhotoURL  string             `json:"photoURL,omitempty"`
	Prefs     Preferences        `json:"preferences,omitempty"`
	CreatedAt timeutil.Timestamp `json:"createdAt"`
}

// Initials derives the upper-cased first letters of the first and last name,
// falling back to the full name's words when the split fields are empty.
func (p Profile) Initials() string {
	first, last := p.FirstName, p.LastName
	if first == "" && last == "" {
		words := strings.Fields(p.FullName)
		if len(words) > 0 {
			first = words[0]
		}
		if len(words) > 1 {
			last = words[len(words)-1]
		}
	}
	return strings.ToUpper(firstLetter(first) + firstLetter(last))
}

// DisplayName is the short greeting fragment: the leading word of the full
// name.
func (p Profile) DisplayName() string {
	if words := strings.Fields(p.FullName); len(words) > 0 {
		return words[0]
	}
	return "User"
}

// Theme returns the effective theme preference, defaulting to system.
func (p Profile) Theme() Theme {
	if p.Prefs.Theme == "" {
		return ThemeSystem
	}
	return p.Prefs.Theme
}

func firstLetter(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}
