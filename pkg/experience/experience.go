// Package experience holds reusable prepared answers ("experiences") that can
// be copied into a job's selection-criteria responses. Linking is a one-time
// text copy; no reference survives it.
package experience

import (
	"strings"

	"rmoflow/pkg/timeutil"
)

// Experience is one reusable answer.
type Experience struct {
	ID        string             `json:"id,omitempty"`
	Title     string             `json:"title"`
	Paragraph string             `json:"paragraph,omitempty"`
	Tags      []string           `json:"tags,omitempty"`
	Favorite  bool               `json:"isFavorite"`
	CreatedAt timeutil.Timestamp `json:"createdAt"`
}

// HasAllTags reports whether e carries every tag in want; an empty want set
// always matches.
func (e Experience) HasAllTags(want []string) bool {
	for _, w := range want {
		found := false
		for _, tag := range e.Tags {
			if tag == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Matches reports a case-insensitive substring hit on title, paragraph, or
// any tag.
func (e Experience) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Title), term) ||
		strings.Contains(strings.ToLower(e.Paragraph), term) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// ParseTags splits a comma-separated tag field into trimmed, non-empty tags.
func ParseTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
