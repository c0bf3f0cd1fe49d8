package importer

import (
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/readstack-hq/pocket2notion/internal/domain"
	"github.com/readstack-hq/pocket2notion/pkg/notion"
)

func importerWithSchema(t *testing.T, props ...string) *Importer {
	t.Helper()
	api := &fakeAPI{db: databaseWith(props...)}
	imp := newTestImporter(t, api)
	imp.available = make(map[string]struct{}, len(props))
	for _, p := range props {
		imp.available[p] = struct{}{}
	}
	return imp
}

func TestBuildPropertiesTruncatesTitle(t *testing.T) {
	imp := importerWithSchema(t, "Title", "URL", "Domain", "Source")

	long := strings.Repeat("x", 150)
	props := imp.buildProperties(domain.Article{Title: long, URL: "https://example.com/a"})

	got := props["Title"].Title[0].Text.Content
	if got != strings.Repeat("x", 100) {
		t.Fatalf("title length = %d, want exactly the first 100 characters", len(got))
	}
}

func TestBuildPropertiesTitleTruncationIsRuneSafe(t *testing.T) {
	imp := importerWithSchema(t, "Title", "URL", "Domain", "Source")

	long := strings.Repeat("あ", 150)
	props := imp.buildProperties(domain.Article{Title: long, URL: "https://example.jp/a"})

	got := props["Title"].Title[0].Text.Content
	if runes := []rune(got); len(runes) != 100 {
		t.Fatalf("title runes = %d, want 100", len(runes))
	}
}

func TestBuildPropertiesCapsTags(t *testing.T) {
	imp := importerWithSchema(t, "Title", "URL", "Domain", "Source", "Tags")

	tags := make([]string, 12)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag-%02d-%s", i, strings.Repeat("y", 150))
	}
	props := imp.buildProperties(domain.Article{Title: "a", URL: "https://example.com/a", Tags: tags})

	options := props["Tags"].MultiSelect
	if len(options) != 10 {
		t.Fatalf("expected 10 tags, got %d", len(options))
	}
	for i, opt := range options {
		if runes := []rune(opt.Name); len(runes) > 100 {
			t.Fatalf("tag %d has %d runes", i, len(runes))
		}
		if !strings.HasPrefix(opt.Name, fmt.Sprintf("tag-%02d", i)) {
			t.Fatalf("tag order not preserved at %d: %q", i, opt.Name)
		}
	}
}

func TestBuildPropertiesOptionalGating(t *testing.T) {
	added := time.Unix(1700000000, 0)
	article := domain.Article{
		Title:     "a",
		URL:       "https://example.com/a",
		Status:    "archive",
		Tags:      []string{"go"},
		AddedDate: &added,
	}

	// Schema without any optional properties: only the required four appear.
	imp := importerWithSchema(t, "Title", "URL", "Domain", "Source")
	props := imp.buildProperties(article)
	if len(props) != 4 {
		t.Fatalf("expected only required properties, got %v", keys(props))
	}

	// Full schema: optional properties are included when the article has values.
	imp = importerWithSchema(t, "Title", "URL", "Domain", "Source", "Status", "AddedDate", "Tags", "ReadingStatus", "Rating")
	props = imp.buildProperties(article)

	if props["Status"].Select == nil || props["Status"].Select.Name != "Archive" {
		t.Fatalf("status not capitalized: %+v", props["Status"])
	}
	if props["ReadingStatus"].Select == nil || props["ReadingStatus"].Select.Name != readingStatusUnread {
		t.Fatalf("reading status marker missing: %+v", props["ReadingStatus"])
	}
	if props["AddedDate"].Date == nil || props["AddedDate"].Date.Start != added.Format(time.RFC3339) {
		t.Fatalf("added date wrong: %+v", props["AddedDate"])
	}
	// Rating is probed but never written.
	if _, ok := props["Rating"]; ok {
		t.Fatalf("Rating must not be written")
	}
}

func TestBuildPropertiesValueGating(t *testing.T) {
	imp := importerWithSchema(t, "Title", "URL", "Domain", "Source", "AddedDate", "Tags")

	// No parsed date and no tags: both optional properties stay absent even
	// though the schema has them.
	props := imp.buildProperties(domain.Article{Title: "a", URL: "https://example.com/a"})
	if _, ok := props["AddedDate"]; ok {
		t.Fatalf("AddedDate must be gated on a parsed date")
	}
	if _, ok := props["Tags"]; ok {
		t.Fatalf("Tags must be gated on non-empty tags")
	}
}

func TestBuildPropertiesDomain(t *testing.T) {
	imp := importerWithSchema(t, "Title", "URL", "Domain", "Source")

	props := imp.buildProperties(domain.Article{Title: "a", URL: "https://blog.example.com/post?id=1"})
	if got := props["Domain"].RichText[0].Text.Content; got != "blog.example.com" {
		t.Fatalf("domain = %q", got)
	}

	props = imp.buildProperties(domain.Article{Title: "b", URL: "http://bad url\x7f"})
	if got := props["Domain"].RichText[0].Text.Content; got != "" {
		t.Fatalf("unparsable URL should yield empty domain, got %q", got)
	}
}

func TestBuildPropertiesSource(t *testing.T) {
	imp := importerWithSchema(t, "Title", "URL", "Domain", "Source")

	props := imp.buildProperties(domain.Article{Title: "a", URL: "https://example.com/a"})
	if props["Source"].Select == nil || props["Source"].Select.Name != "Pocket" {
		t.Fatalf("source label = %+v", props["Source"])
	}
}

func keys(props notion.Properties) []string {
	out := make([]string, 0, len(props))
	for k := range props {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
