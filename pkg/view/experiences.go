package view

import (
	"sort"

	"rmoflow/pkg/experience"
)

// ExperienceFilter is the experience book's transient filter state.
type ExperienceFilter struct {
	Search string
	// Tags is the active tag set; an experience must carry every one of
	// them, not just any.
	Tags []string
}

// Experiences filters the experience book: tag intersection, then substring
// search over title/paragraph/tags, favorites floated to the top with the
// incoming order otherwise preserved.
func Experiences(exps []experience.Experience, f ExperienceFilter) []experience.Experience {
	kept := make([]experience.Experience, 0, len(exps))
	for _, e := range exps {
		if !e.HasAllTags(f.Tags) {
			continue
		}
		if !e.Matches(f.Search) {
			continue
		}
		kept = append(kept, e)
	}
	sort.SliceStable(kept, func(i, k int) bool {
		return kept[i].Favorite && !kept[k].Favorite
	})
	return kept
}

// AllTags collects the distinct tags across the whole experience book,
// sorted, for the tag-filter row.
func AllTags(exps []experience.Experience) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, e := range exps {
		for _, tag := range e.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
