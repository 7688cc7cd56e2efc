// Package voice maps a requested language and voice selection onto the
// concrete on-disk voice resource file the synthesis engine loads.
package voice

import (
	"os"
	"strings"
)

// Placeholder is the token in a search-path template that gets replaced by
// the selected voice identifier.
const Placeholder = "$VOICE"

// Resolver locates a voice resource file by substituting a voice identifier
// into an ordered list of search-path templates. The list is fixed at
// construction; insertion order is priority order.
type Resolver struct {
	searchPaths []string
}

// NewResolver creates a resolver over the configured search-path templates.
// An empty list is valid and resolves nothing.
func NewResolver(searchPaths []string) *Resolver {
	return &Resolver{
		searchPaths: searchPaths,
	}
}

// Resolve substitutes voiceID into each template in order and returns the
// first resulting path that exists on disk. It reports false when voiceID is
// empty or no substituted path exists. An empty voiceID never touches the
// filesystem.
func (r *Resolver) Resolve(voiceID string) (string, bool) {
	if voiceID == "" {
		return "", false
	}

	for _, template := range r.searchPaths {
		candidate := strings.ReplaceAll(template, Placeholder, voiceID)

		_, statErr := os.Stat(candidate)
		if statErr == nil {
			return candidate, true
		}
	}

	return "", false
}
