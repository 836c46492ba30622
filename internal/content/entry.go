// Package content holds the FAQ entries the assistant answers from.
package content

import (
	"fmt"
	"slices"
	"strings"
)

// Entry is a static question/answer record with tags.
type Entry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
}

// LoadError reports a missing or malformed FAQ source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("content: load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// clone returns a copy that shares no slices with e.
func (e Entry) clone() Entry {
	e.Tags = slices.Clone(e.Tags)
	return e
}

// normalize trims fields and collapses tags into an ordered set.
func (e Entry) normalize() Entry {
	e.ID = strings.TrimSpace(e.ID)
	e.Title = strings.TrimSpace(e.Title)
	e.Question = strings.TrimSpace(e.Question)
	e.Answer = strings.TrimSpace(e.Answer)

	seen := make(map[string]struct{}, len(e.Tags))
	tags := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	e.Tags = tags
	return e
}

// validate checks ids are present and unique.
func validate(entries []Entry) error {
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if entry.ID == "" {
			return fmt.Errorf("entry %d has no id", i)
		}
		if prev, dup := seen[entry.ID]; dup {
			return fmt.Errorf("duplicate id %q at entries %d and %d", entry.ID, prev, i)
		}
		seen[entry.ID] = i
	}
	return nil
}
