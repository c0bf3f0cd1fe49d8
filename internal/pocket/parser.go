package pocket

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/readstack-hq/pocket2notion/internal/domain"
	"github.com/readstack-hq/pocket2notion/internal/logger"
	"github.com/readstack-hq/pocket2notion/pkg/profiles"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Package pocket turns a bookmarking-service CSV export into normalized articles.

var (
	// ErrNotFound indicates the export file does not exist.
	ErrNotFound = errors.New("export file not found")
	// ErrDecode indicates no configured text encoding could decode the file.
	ErrDecode = errors.New("export file could not be decoded")
	// ErrEmptyFile indicates the file holds no data rows.
	ErrEmptyFile = errors.New("export file has no data rows")
)

const defaultStatus = "unread"

// ParseFile reads one CSV export and returns its normalized articles in row
// order. Rows without a URL are dropped silently; a missing title falls back
// to the URL, so every returned article has both fields set.
func ParseFile(path string, profile profiles.Profile) ([]domain.Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read export file: %w", err)
	}

	text, err := decodeText(raw, profile.Encodings)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}

	articles, err := parseRecords(text, profile)
	if err != nil {
		return nil, err
	}

	logger.InfoObj("export file parsed", "parse_meta", map[string]any{
		"file":     path,
		"articles": len(articles),
	})
	return articles, nil
}

// decodeText tries each configured encoding in order and returns the first
// clean decoding. Strictness matters here: an encoding that produced
// replacement runes is treated as a failure so the next one gets a chance.
func decodeText(raw []byte, encodings []string) (string, error) {
	if len(encodings) == 0 {
		encodings = profiles.Default().Encodings
	}

	for _, name := range encodings {
		dec := decoderFor(name)
		if dec == nil {
			logger.WarnObj("unknown encoding in profile, skipping", "encoding", name)
			continue
		}

		if dec == utf8Decoder {
			if utf8.Valid(raw) {
				return string(raw), nil
			}
			continue
		}

		out, _, err := transform.Bytes(dec.NewDecoder(), raw)
		if err != nil || !utf8.Valid(out) || strings.ContainsRune(string(out), utf8.RuneError) {
			continue
		}
		return string(out), nil
	}

	return "", ErrDecode
}

// utf8Decoder marks the pass-through decoding; raw bytes are validated directly.
var utf8Decoder = encoding.Nop

func decoderFor(name string) encoding.Encoding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return utf8Decoder
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "shift_jis", "shift-jis", "sjis":
		return japanese.ShiftJIS
	default:
		return nil
	}
}

// parseRecords walks the decoded CSV text row by row.
func parseRecords(text string, profile profiles.Profile) ([]domain.Article, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := resolveColumns(header, profile.Columns)

	var articles []domain.Article
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows++

		if article, ok := normalizeRow(record, cols); ok {
			articles = append(articles, article)
		}
	}

	if rows == 0 {
		return nil, ErrEmptyFile
	}
	return articles, nil
}

// columnIndexes holds the header positions of the logical fields, -1 when the
// column is absent (missing optional columns are tolerated).
type columnIndexes struct {
	title, url, tags, timeAdded, status int
}

func resolveColumns(header []string, cols profiles.Columns) columnIndexes {
	idx := columnIndexes{title: -1, url: -1, tags: -1, timeAdded: -1, status: -1}
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case strings.EqualFold(name, cols.Title):
			idx.title = i
		case strings.EqualFold(name, cols.URL):
			idx.url = i
		case strings.EqualFold(name, cols.Tags):
			idx.tags = i
		case strings.EqualFold(name, cols.TimeAdded):
			idx.timeAdded = i
		case strings.EqualFold(name, cols.Status):
			idx.status = i
		}
	}
	return idx
}

// normalizeRow builds one article from a CSV record. Rows lacking a URL are
// dropped, reported via the second return value.
func normalizeRow(record []string, cols columnIndexes) (domain.Article, bool) {
	url := strings.TrimSpace(field(record, cols.url))
	if url == "" {
		return domain.Article{}, false
	}

	title := strings.TrimSpace(field(record, cols.title))
	if title == "" {
		title = url
	}

	article := domain.Article{
		Title:  title,
		URL:    url,
		Status: defaultStatus,
	}

	if status := strings.TrimSpace(field(record, cols.status)); status != "" {
		article.Status = status
	}

	if raw := strings.TrimSpace(field(record, cols.timeAdded)); raw != "" {
		if ts, err := parseEpochSeconds(raw); err != nil {
			logger.WarnObj("timestamp conversion failed", "timestamp_error", map[string]any{
				"value": raw,
				"error": err.Error(),
			})
		} else {
			added := time.Unix(ts, 0)
			article.AddedDate = &added
			article.TimeAdded = strconv.FormatInt(ts, 10)
		}
	}

	article.Tags = splitTags(field(record, cols.tags))

	return article, true
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// parseEpochSeconds accepts integer or float text, truncating toward zero.
func parseEpochSeconds(raw string) (int64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// splitTags splits on comma when one is present, otherwise the whole trimmed
// field is a single tag. Empty fragments are discarded.
func splitTags(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	if !strings.Contains(trimmed, ",") {
		return []string{trimmed}
	}

	var tags []string
	for _, part := range strings.Split(trimmed, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
