package remote

import (
	"fmt"
	"strings"
)

// Join builds a slash path from segments, dropping empties.
func Join(segments ...string) string {
	var kept []string
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "/")
}

// Split returns the cleaned path segments.
func Split(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// IsCollection reports whether path addresses a collection (odd segment
// count) rather than a single document.
func IsCollection(path string) bool {
	return len(Split(path))%2 == 1
}

// ParentCollection returns the collection path holding the given document.
func ParentCollection(docPath string) (string, error) {
	segs := Split(docPath)
	if len(segs)%2 != 0 || len(segs) == 0 {
		return "", fmt.Errorf("remote: %q is not a document path", docPath)
	}
	return strings.Join(segs[:len(segs)-1], "/"), nil
}

// UserDoc, JobsPath and friends spell out the persisted layout so callers
// never assemble raw strings.

func UserDoc(uid string) string         { return Join("users", uid) }
func JobsPath(uid string) string        { return Join("users", uid, "jobs") }
func JobDoc(uid, id string) string      { return Join("users", uid, "jobs", id) }
func ExperiencesPath(uid string) string { return Join("users", uid, "experiences") }
func ExperienceDoc(uid, id string) string {
	return Join("users", uid, "experiences", id)
}
func DocumentsPath(uid string) string    { return Join("users", uid, "documents") }
func DocumentDoc(uid, id string) string  { return Join("users", uid, "documents", id) }
func ProfileImageBlob(uid string) string { return Join("users", uid, "profileImage") }

// DocumentBlob is where an uploaded file lands: a timestamp prefix keeps
// same-named uploads distinct.
func DocumentBlob(uid string, unixMillis int64, filename string) string {
	return Join("users", uid, "documents", fmt.Sprintf("%d_%s", unixMillis, filename))
}
