package importer

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/readstack-hq/pocket2notion/internal/domain"
	"github.com/readstack-hq/pocket2notion/pkg/notion"
)

// Remote per-field content limits.
const (
	maxTitleRunes = 100
	maxTags       = 10
	maxTagRunes   = 100
)

// readingStatusUnread is the marker the ReadingStatus select starts at.
const readingStatusUnread = "未読"

// optionalField is one conditionally-included property: the property name,
// a predicate on the article, and the value builder. The ordered list keeps
// the optional-field logic declarative.
type optionalField struct {
	name    string
	applies func(domain.Article) bool
	build   func(domain.Article) notion.PropertyValue
}

func optionalFields() []optionalField {
	return []optionalField{
		{
			name:    "Status",
			applies: func(domain.Article) bool { return true },
			build: func(a domain.Article) notion.PropertyValue {
				return notion.NewSelect(capitalize(statusOrDefault(a.Status)))
			},
		},
		{
			name:    "ReadingStatus",
			applies: func(domain.Article) bool { return true },
			build: func(domain.Article) notion.PropertyValue {
				return notion.NewSelect(readingStatusUnread)
			},
		},
		{
			name:    "AddedDate",
			applies: func(a domain.Article) bool { return a.AddedDate != nil },
			build: func(a domain.Article) notion.PropertyValue {
				return notion.NewDate(*a.AddedDate)
			},
		},
		{
			name:    "Tags",
			applies: func(a domain.Article) bool { return len(a.Tags) > 0 },
			build: func(a domain.Article) notion.PropertyValue {
				return notion.NewMultiSelect(capTags(a.Tags))
			},
		},
		// Rating exists in the optional schema set but is never written;
		// it is left empty for manual scoring after reading.
	}
}

// buildProperties assembles the page property payload for one article,
// honoring content limits and skipping optional properties the database
// does not have.
func (imp *Importer) buildProperties(a domain.Article) notion.Properties {
	props := notion.Properties{
		"Title":  notion.NewTitle(truncateRunes(a.Title, maxTitleRunes)),
		"URL":    notion.NewURL(a.URL),
		"Domain": notion.NewRichText(domainOf(a.URL)),
		"Source": notion.NewSelect(imp.profile.Label),
	}

	for _, f := range optionalFields() {
		if _, ok := imp.available[f.name]; !ok {
			continue
		}
		if !f.applies(a) {
			continue
		}
		props[f.name] = f.build(a)
	}

	return props
}

// domainOf extracts the host component of rawURL, empty when parsing fails.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// capTags keeps the first maxTags tags, each truncated to maxTagRunes.
func capTags(tags []string) []string {
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = truncateRunes(tag, maxTagRunes)
	}
	return out
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func statusOrDefault(status string) string {
	if strings.TrimSpace(status) == "" {
		return "unread"
	}
	return status
}
