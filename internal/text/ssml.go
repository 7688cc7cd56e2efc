// Package text strips speech markup from request text before it reaches the
// synthesis engine, which does not understand SSML.
package text

import (
	"regexp"
	"strings"
)

// Markup patterns and entity spellings.
const (
	tagRegexPattern = `<[^>]*>`

	entityLt   = "&lt;"
	entityGt   = "&gt;"
	entityQuot = "&quot;"
	entityApos = "&apos;"
	entityAmp  = "&amp;"
)

// Stripper removes SSML markup from text. Patterns are compiled once at
// construction and the stripper is safe to reuse across requests.
type Stripper struct {
	tagPattern     *regexp.Regexp
	entityReplacer *strings.Replacer
}

// NewStripper creates a stripper with compiled patterns.
func NewStripper() *Stripper {
	return &Stripper{
		tagPattern: regexp.MustCompile(tagRegexPattern),
		entityReplacer: strings.NewReplacer(
			entityLt, "<",
			entityGt, ">",
			entityQuot, `"`,
			entityApos, "'",
			entityAmp, "&",
		),
	}
}

// Strip removes all markup tags and decodes the predefined XML entities,
// returning the plain text payload for synthesis.
func (s *Stripper) Strip(markup string) string {
	plain := s.tagPattern.ReplaceAllString(markup, "")

	return s.entityReplacer.Replace(plain)
}
