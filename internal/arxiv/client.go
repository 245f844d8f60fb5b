// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv implements the arXiv metadata client: rate-limited,
// paginated fetches of paper metadata from the arXiv Atom API.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Tatuum/RAG-research-paper-curator/internal/logging"
	"github.com/Tatuum/RAG-research-paper-curator/pkg/types"
)

// maxResultsCeiling is the arXiv API's hard cap on page size.
const maxResultsCeiling = 2000

// Client fetches paper metadata from the arXiv API. All requests go
// through a shared Limiter so consecutive calls honor the arXiv delay
// policy regardless of which component issues them.
type Client struct {
	cfg     types.ArxivConfig
	http    *http.Client
	limiter *Limiter
	log     zerolog.Logger
}

// NewClient creates an arXiv client. The limiter is shared with the PDF
// fetcher; pass the same instance to both.
func NewClient(cfg types.ArxivConfig, limiter *Limiter) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     logging.NewLogger("arxiv"),
	}
}

// Limiter returns the shared rate limiter.
func (c *Client) Limiter() *Limiter { return c.limiter }

// FetchPapers queries the configured category and returns one page of
// metadata records in feed order. Malformed entries are skipped with a
// warning; a malformed top-level feed is a ParseError with no partial
// result.
func (c *Client) FetchPapers(ctx context.Context, start, maxResults int) ([]types.ArxivPaper, error) {
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}
	if maxResults > maxResultsCeiling {
		maxResults = maxResultsCeiling
	}

	url := fmt.Sprintf("%s?search_query=cat:%s&start=%d&max_results=%d",
		c.cfg.BaseURL, c.cfg.SearchCategory, start, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	defer c.limiter.Mark()

	c.log.Info().Str("category", c.cfg.SearchCategory).Int("start", start).
		Int("max_results", maxResults).Msg("fetching papers")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Err: err}
		}
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, &ParseError{Err: err}
	}

	papers := make([]types.ArxivPaper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		paper, err := parseEntry(entry)
		if err != nil {
			c.log.Warn().Err(err).Str("entry_id", entry.ID).Msg("skipping malformed entry")
			continue
		}
		papers = append(papers, paper)
	}

	c.log.Info().Int("fetched", len(papers)).Msg("fetched papers")
	return papers, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Authors    []atomAuthor   `xml:"author"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// parseEntry converts one Atom entry to an ArxivPaper. An entry with no
// usable identifier or PDF link is malformed.
func parseEntry(entry atomEntry) (types.ArxivPaper, error) {
	id := extractPaperID(entry.ID)
	if id == "" {
		return types.ArxivPaper{}, fmt.Errorf("entry has no paper ID")
	}

	pdfURL := extractPDFURL(entry.Links)
	if pdfURL == "" {
		return types.ArxivPaper{}, fmt.Errorf("entry %s has no PDF link", id)
	}

	p := types.ArxivPaper{
		PaperID:  id,
		Title:    cleanText(entry.Title),
		Abstract: cleanText(entry.Summary),
		PDFURL:   pdfURL,
	}

	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, c := range entry.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	return p, nil
}

// extractPaperID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractPaperID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// extractPDFURL finds the application/pdf link, normalizing arXiv links
// to HTTPS.
func extractPDFURL(links []atomLink) string {
	for _, l := range links {
		if l.Type != "application/pdf" {
			continue
		}
		url := l.Href
		if strings.HasPrefix(url, "http://arxiv.org/") {
			url = strings.Replace(url, "http://arxiv.org/", "https://arxiv.org/", 1)
		}
		return url
	}
	return ""
}

// cleanText trims whitespace and collapses the hard newlines arXiv
// inserts into titles and abstracts.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
