// Package compose builds social post bodies with byte-offset rich text
// annotations. The budget is a character count; facet offsets are UTF-8
// byte positions over the final text. The two measures must never be mixed.
package compose

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultBudget is the post body limit imposed by the downstream service.
	DefaultBudget = 300

	linkPrefix = "Read more: "
	ellipsis   = "…"
)

type FacetKind string

const (
	FacetLink FacetKind = "link"
	FacetTag  FacetKind = "tag"
)

// Facet annotates a byte range of the composed text. ByteStart and ByteEnd
// index into the UTF-8 encoding of Post.Text; decoding that range yields the
// exact substring being annotated (the URL for links, "#"+Value for tags).
type Facet struct {
	ByteStart int
	ByteEnd   int
	Kind      FacetKind
	Value     string
}

// Post is the composed body plus its annotations. It is a plain value;
// callers build one per outbound post and discard it.
type Post struct {
	Text   string
	Facets []Facet
}

// Compose renders title, link and hashtags into a post body of at most
// budget characters. When the full rendering is too long, hashtags are
// dropped from the end first; if the text still does not fit with no tags
// left, the title is truncated with a trailing ellipsis against the link
// line, and as a last resort the link line itself is clipped verbatim.
// Every input degrades to a valid shorter text; Compose never fails.
func Compose(title, link string, defaultTags, suppliedTags []string, budget int) Post {
	if budget <= 0 {
		return Post{Text: "", Facets: []Facet{}}
	}

	title = strings.TrimSpace(title)
	tags := mergeTags(defaultTags, suppliedTags)

	text := render(title, link, tags)
	for utf8.RuneCountInString(text) > budget && len(tags) > 0 {
		tags = tags[:len(tags)-1]
		text = render(title, link, tags)
	}

	if utf8.RuneCountInString(text) > budget {
		text = truncate(title, link, budget)
	}

	return Post{Text: text, Facets: facets(text, link)}
}

func mergeTags(defaultTags, suppliedTags []string) []string {
	seen := make(map[string]struct{}, len(defaultTags)+len(suppliedTags))
	merged := make([]string, 0, len(defaultTags)+len(suppliedTags))
	for _, tag := range append(append([]string{}, defaultTags...), suppliedTags...) {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}
	return merged
}

func render(title, link string, tags []string) string {
	var lines []string
	if title != "" {
		lines = append(lines, title)
	}
	if link != "" {
		lines = append(lines, linkPrefix+link)
	}
	if len(tags) > 0 {
		lines = append(lines, strings.Join(tags, " "))
	}
	return strings.Join(lines, "\n\n")
}

// truncate handles the no-tags-left overflow: the link line is the fixed
// portion, the title absorbs the cut. All arithmetic here counts characters.
func truncate(title, link string, budget int) string {
	fixed := ""
	if link != "" {
		fixed = linkPrefix + link
	}

	separator := ""
	if title != "" && fixed != "" {
		separator = "\n\n"
	}

	remaining := budget - utf8.RuneCountInString(fixed) - utf8.RuneCountInString(separator)
	if remaining < 1 {
		// Even the fixed portion does not fit; clip it verbatim. There is
		// no shorter valid representation of a URL line.
		return clipRunes(fixed, budget)
	}

	if title == "" {
		return fixed
	}
	return clipRunes(title, remaining-1) + ellipsis + separator + fixed
}

func clipRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// facets locates the link and every hashtag token in the final text. Byte
// offsets fall out of Go's string indexing, which is already UTF-8.
func facets(text, link string) []Facet {
	out := []Facet{}

	if link != "" {
		if start := strings.Index(text, link); start >= 0 {
			out = append(out, Facet{
				ByteStart: start,
				ByteEnd:   start + len(link),
				Kind:      FacetLink,
				Value:     link,
			})
		}
	}

	// Explicit scan instead of a regexp: the tag body class is exactly
	// ASCII [A-Za-z0-9_], independent of any locale-aware word definition.
	for i := 0; i < len(text); i++ {
		if text[i] != '#' {
			continue
		}
		if i > 0 && isWordByte(text[i-1]) {
			continue
		}
		j := i + 1
		for j < len(text) && isWordByte(text[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		out = append(out, Facet{
			ByteStart: i,
			ByteEnd:   j,
			Kind:      FacetTag,
			Value:     text[i+1 : j],
		})
		i = j - 1
	}

	return out
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '_'
}
