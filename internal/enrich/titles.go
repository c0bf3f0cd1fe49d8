package enrich

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/readstack-hq/pocket2notion/internal/domain"
	"github.com/readstack-hq/pocket2notion/internal/logger"
)

// Package enrich recovers page titles for articles whose title fell back to
// the URL during parsing. It is an optional post-parse step: any failure
// leaves the URL title in place and the import proceeds.

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// TitleScraper fetches article pages and extracts a title from OG tags.
type TitleScraper struct {
	client *resty.Client
	log    logger.Logger
}

// NewTitleScraper constructs a scraper with the given per-request timeout.
func NewTitleScraper(timeout time.Duration, log logger.Logger) *TitleScraper {
	if log == nil {
		log = logger.NopLogger{}
	}
	client := resty.New()
	client.SetTimeout(timeout)
	return &TitleScraper{client: client, log: log}
}

// Enrich returns a copy of articles where URL-titled entries carry the
// scraped page title instead. Articles that already have a real title are
// untouched, as is any article whose page cannot be fetched or parsed.
func (s *TitleScraper) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := append([]domain.Article(nil), articles...)

	for i, art := range articles {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		if art.Title != art.URL {
			continue
		}

		title, err := s.fetchTitle(ctx, art.URL)
		if err != nil {
			s.log.WarnObj("title scrape failed", "scrape_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
			continue
		}
		if title != "" {
			out[i].Title = title
		}
	}

	return out
}

func (s *TitleScraper) fetchTitle(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	return parseTitle(body)
}

func parseTitle(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	if node := doc.Find(`meta[property="og:title"]`).First(); node.Length() > 0 {
		if val, ok := node.Attr("content"); ok {
			if title := strings.TrimSpace(val); title != "" {
				return title, nil
			}
		}
	}

	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}
