package pocket

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/readstack-hq/pocket2notion/pkg/profiles"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestParseFileDropsRowsWithoutURL(t *testing.T) {
	path := writeCSV(t, "title,url,time_added,tags,status\n"+
		"First,https://example.com/a,1700000000,,unread\n"+
		"No URL here,,1700000000,,unread\n"+
		"Second,https://example.com/b,1700000000,,archive\n")

	articles, err := ParseFile(path, profiles.Default())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].URL != "https://example.com/a" || articles[1].URL != "https://example.com/b" {
		t.Fatalf("row order not preserved: %+v", articles)
	}
	if articles[1].Status != "archive" {
		t.Fatalf("status not copied: %q", articles[1].Status)
	}
}

func TestParseFileTitleFallsBackToURL(t *testing.T) {
	path := writeCSV(t, "title,url,time_added,tags,status\n"+
		",https://example.com/untitled,,,\n")

	articles, err := ParseFile(path, profiles.Default())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	if articles[0].Title != "https://example.com/untitled" {
		t.Fatalf("expected URL as title, got %q", articles[0].Title)
	}
	if articles[0].Status != "unread" {
		t.Fatalf("expected default status, got %q", articles[0].Status)
	}
}

func TestParseFileTagSplitting(t *testing.T) {
	path := writeCSV(t, "title,url,time_added,tags,status\n"+
		`a,https://example.com/1,,"go, systems , ,testing",unread`+"\n"+
		"b,https://example.com/2,,single tag,unread\n"+
		"c,https://example.com/3,,,unread\n")

	articles, err := ParseFile(path, profiles.Default())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if got, want := articles[0].Tags, []string{"go", "systems", "testing"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("comma-split tags = %v, want %v", got, want)
	}
	if got, want := articles[1].Tags, []string{"single tag"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("single tag = %v, want %v", got, want)
	}
	if articles[2].Tags != nil {
		t.Fatalf("expected no tags, got %v", articles[2].Tags)
	}
}

func TestParseFileTimestamps(t *testing.T) {
	path := writeCSV(t, "title,url,time_added,tags,status\n"+
		"ok,https://example.com/1,1700000000,,unread\n"+
		"float,https://example.com/2,1700000000.0,,unread\n"+
		"bad,https://example.com/3,not-a-number,,unread\n"+
		"empty,https://example.com/4,,,unread\n")

	articles, err := ParseFile(path, profiles.Default())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if articles[0].AddedDate == nil || articles[0].AddedDate.Unix() != 1700000000 {
		t.Fatalf("expected parsed date, got %+v", articles[0].AddedDate)
	}
	if articles[0].TimeAdded != "1700000000" {
		t.Fatalf("raw timestamp mirror = %q", articles[0].TimeAdded)
	}
	if articles[1].AddedDate == nil || articles[1].TimeAdded != "1700000000" {
		t.Fatalf("float timestamp should truncate: %+v %q", articles[1].AddedDate, articles[1].TimeAdded)
	}
	// Unparsable or absent timestamps leave both fields unset without failing the row.
	for _, i := range []int{2, 3} {
		if articles[i].AddedDate != nil || articles[i].TimeAdded != "" {
			t.Fatalf("article %d: expected unset timestamp, got %+v %q", i, articles[i].AddedDate, articles[i].TimeAdded)
		}
	}
}

func TestParseFileEmpty(t *testing.T) {
	for _, content := range []string{"", "title,url,time_added,tags,status\n"} {
		path := writeCSV(t, content)
		if _, err := ParseFile(path, profiles.Default()); !errors.Is(err, ErrEmptyFile) {
			t.Fatalf("content %q: expected ErrEmptyFile, got %v", content, err)
		}
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.csv"), profiles.Default())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseFileWindows1252Fallback(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid as standalone UTF-8.
	content := []byte("title,url,time_added,tags,status\ncaf\xe9,https://example.com/cafe,,,unread\n")
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	articles, err := ParseFile(path, profiles.Default())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if articles[0].Title != "café" {
		t.Fatalf("expected windows-1252 decode, got %q", articles[0].Title)
	}
}

func TestParseFileShiftJISFallback(t *testing.T) {
	encoded, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(),
		[]byte("title,url,time_added,tags,status\n日本語の記事,https://example.jp/a,,,unread\n"))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	profile := profiles.Default()
	profile.Encodings = []string{"utf-8", "shift_jis"}

	articles, err := ParseFile(path, profile)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if articles[0].Title != "日本語の記事" {
		t.Fatalf("expected shift_jis decode, got %q", articles[0].Title)
	}
}

func TestParseFileMissingOptionalColumns(t *testing.T) {
	path := writeCSV(t, "title,url\nonly required,https://example.com/min\n")

	articles, err := ParseFile(path, profiles.Default())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	a := articles[0]
	if a.Status != "unread" || a.Tags != nil || a.AddedDate != nil {
		t.Fatalf("missing columns should use defaults, got %+v", a)
	}
}
