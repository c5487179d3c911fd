package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperifyio/gosummarize/internal/report"
)

// FormatNotion publishes a report as Notion database pages. It is not a
// document format, so Write rejects it.
const FormatNotion Format = "notion"

const (
	defaultNotionURL = "https://api.notion.com/v1"
	notionVersion    = "2022-06-28"
)

// notionTextLimit is the longest rich_text content Notion accepts.
const notionTextLimit = 2000

// ErrNotionNotConfigured is returned when the integration token or the
// target database is missing.
var ErrNotionNotConfigured = errors.New("export: notion token and database id are required")

// NotionError is a non-2xx answer from the Notion API.
type NotionError struct {
	Status  int
	Code    string
	Message string
}

func (e *NotionError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: status %d", e.Status)
	}
	return fmt.Sprintf("notion: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// NotionPage is one created page.
type NotionPage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// NotionResult lists the pages created by an export.
type NotionResult struct {
	Pages []NotionPage `json:"pages"`
}

// NotionClient creates one page per report item in a Notion database.
type NotionClient struct {
	Token      string
	DatabaseID string
	// BaseURL defaults to the public Notion API.
	BaseURL    string
	HTTPClient *http.Client
}

// Notion exports r to the database databaseID using the integration token.
func Notion(ctx context.Context, r report.Report, includeSummaries bool, token, databaseID string) (NotionResult, error) {
	c := &NotionClient{Token: token, DatabaseID: databaseID}
	return c.Export(ctx, r, includeSummaries)
}

// Export creates the pages in item order. On failure it returns the pages
// created before the failing one together with the error.
func (c *NotionClient) Export(ctx context.Context, r report.Report, includeSummaries bool) (NotionResult, error) {
	var res NotionResult
	if c == nil || strings.TrimSpace(c.Token) == "" || strings.TrimSpace(c.DatabaseID) == "" {
		return res, ErrNotionNotConfigured
	}
	for _, it := range r.Items {
		page, err := c.createPage(ctx, c.pageFor(r.Query, it, includeSummaries))
		if err != nil {
			return res, fmt.Errorf("export %q to notion: %w", it.URL, err)
		}
		res.Pages = append(res.Pages, page)
	}
	return res, nil
}

type notionText struct {
	Type string `json:"type"`
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

type notionBlock struct {
	Object    string               `json:"object"`
	Type      string               `json:"type"`
	Paragraph *notionRichTextBlock `json:"paragraph,omitempty"`
	Heading3  *notionRichTextBlock `json:"heading_3,omitempty"`
}

type notionRichTextBlock struct {
	RichText []notionText `json:"rich_text"`
}

type notionPageRequest struct {
	Parent struct {
		DatabaseID string `json:"database_id"`
	} `json:"parent"`
	Properties map[string]any `json:"properties"`
	Children   []notionBlock  `json:"children,omitempty"`
}

func (c *NotionClient) pageFor(query string, it report.Item, includeSummaries bool) notionPageRequest {
	var p notionPageRequest
	p.Parent.DatabaseID = c.DatabaseID
	title := it.Title
	if title == "" {
		title = it.URL
	}
	p.Properties = map[string]any{
		"Title": map[string]any{"title": richText(title)},
		"Query": map[string]any{"rich_text": richText(query)},
	}
	if it.URL != "" {
		p.Properties["URL"] = map[string]any{"url": it.URL}
	}
	if it.Snippet != "" {
		p.Children = append(p.Children, notionBlock{
			Object:    "block",
			Type:      "paragraph",
			Paragraph: &notionRichTextBlock{RichText: richText(it.Snippet)},
		})
	}
	if includeSummaries && it.Summary != "" {
		p.Children = append(p.Children,
			notionBlock{
				Object:   "block",
				Type:     "heading_3",
				Heading3: &notionRichTextBlock{RichText: richText("Summary")},
			},
			notionBlock{
				Object:    "block",
				Type:      "paragraph",
				Paragraph: &notionRichTextBlock{RichText: richText(it.Summary)},
			})
	}
	return p
}

// richText splits s into items within the Notion length limit.
func richText(s string) []notionText {
	runes := []rune(s)
	out := make([]notionText, 0, len(runes)/notionTextLimit+1)
	for len(runes) > 0 {
		n := min(len(runes), notionTextLimit)
		var t notionText
		t.Type = "text"
		t.Text.Content = string(runes[:n])
		out = append(out, t)
		runes = runes[n:]
	}
	if len(out) == 0 {
		var t notionText
		t.Type = "text"
		out = append(out, t)
	}
	return out
}

func (c *NotionClient) createPage(ctx context.Context, p notionPageRequest) (NotionPage, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return NotionPage{}, err
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = defaultNotionURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/pages", bytes.NewReader(body))
	if err != nil {
		return NotionPage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return NotionPage{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return NotionPage{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ne := &NotionError{Status: resp.StatusCode}
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil {
			ne.Code, ne.Message = apiErr.Code, apiErr.Message
		}
		return NotionPage{}, ne
	}
	var page NotionPage
	if err := json.Unmarshal(data, &page); err != nil {
		return NotionPage{}, fmt.Errorf("decode notion page: %w", err)
	}
	return page, nil
}
