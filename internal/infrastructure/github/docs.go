package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	truncatedMarker      = "\n[... truncated]"
	totalTruncatedMarker = "\n[... content truncated to size limit]"
	noDocumentation      = "No documentation available."

	// Below this many free bytes an extra doc is not worth appending.
	minAppendRemainder = 100
)

type docBundle struct {
	Combined   string
	ReadmeSize int
	ArchSize   int
	FileList   []string
}

// fetchDocumentation assembles the size-capped documentation bundle for one
// repository: README, root-level markdown files, and one hop into docs
// directories. Every failure degrades to an empty part; downstream stages
// treat the placeholder as valid input.
func (c *Client) fetchDocumentation(ctx context.Context, fullName string) docBundle {
	readme := c.fetchReadme(ctx, fullName)
	archDocs, fileList := c.fetchArchDocs(ctx, fullName)

	if len(readme) > c.cfg.ReadmeCap {
		truncated := truncateWithMarker(readme, c.cfg.ReadmeCap, truncatedMarker)
		c.info("readme truncated", "repo", fullName, "before", len(readme), "after", len(truncated))
		readme = truncated
	}

	var combined string
	if readme != "" {
		combined = "# README\n" + readme + "\n\n" + archDocs
	} else {
		combined = archDocs
	}

	if len(combined) > c.cfg.TotalDocCap {
		truncated := truncateWithMarker(combined, c.cfg.TotalDocCap, totalTruncatedMarker)
		c.info("total docs truncated", "repo", fullName, "before", len(combined), "after", len(truncated))
		combined = truncated
	}

	if strings.TrimSpace(combined) == "" {
		combined = noDocumentation
	}

	return docBundle{
		Combined:   combined,
		ReadmeSize: len(readme),
		ArchSize:   len(archDocs),
		FileList:   fileList,
	}
}

// fetchReadme decodes the base64 content envelope of /repos/{full}/readme and
// strips embedded HTML (badges, img tags) before sizing.
func (c *Client) fetchReadme(ctx context.Context, fullName string) string {
	status, body, err := c.fetchWithPermit(ctx, c.cfg.APIURL+"/repos/"+fullName+"/readme")
	if err != nil || status != http.StatusOK {
		if err != nil {
			c.warn("readme fetch failed", "repo", fullName, "error", err)
		}
		return ""
	}

	var envelope struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Content == "" {
		return ""
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(envelope.Content, "\n", ""))
	if err != nil {
		c.warn("readme decode failed", "repo", fullName, "error", err)
		return ""
	}
	return stripHTML(string(raw))
}

// fetchArchDocs walks the root contents listing once: non-README markdown
// files directly, docs/documentation directories one hop deep. The combined
// text never exceeds the architecture-docs cap.
func (c *Client) fetchArchDocs(ctx context.Context, fullName string) (string, []string) {
	status, body, err := c.fetchWithPermit(ctx, c.cfg.APIURL+"/repos/"+fullName+"/contents")
	if err != nil || status != http.StatusOK {
		if err != nil {
			c.warn("contents fetch failed", "repo", fullName, "error", err)
		}
		return "", nil
	}

	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return "", nil
	}

	var (
		parts    []string
		fileList []string
	)
	for _, item := range items {
		fileList = append(fileList, item.Path)
		switch {
		case item.Type == "file" && isMarkdown(item.Name) && strings.ToLower(item.Name) != "readme.md":
			if text := c.fetchRawFile(ctx, item.DownloadURL); text != "" {
				parts = append(parts, text)
			}
		case item.Type == "dir" && isDocsDir(item.Name):
			if text := c.fetchDirectoryMarkdown(ctx, fullName, item.Name); text != "" {
				parts = append(parts, text)
			}
		}
	}

	var docText string
	for _, part := range parts {
		if len(docText)+len(part)+2 <= c.cfg.ArchDocsCap {
			docText += "\n\n" + part
			continue
		}
		remaining := c.cfg.ArchDocsCap - len(docText) - 2
		if remaining > minAppendRemainder {
			before := len(part)
			docText += "\n\n" + truncateWithMarker(part, remaining, truncatedMarker)
			c.info("architecture docs truncated", "repo", fullName, "before", before, "after", remaining)
		}
		break
	}
	return docText, fileList
}

// fetchDirectoryMarkdown collects every markdown file in one directory (one
// extra fetch hop, no deeper recursion).
func (c *Client) fetchDirectoryMarkdown(ctx context.Context, fullName, path string) string {
	status, body, err := c.fetchWithPermit(ctx, c.cfg.APIURL+"/repos/"+fullName+"/contents/"+path)
	if err != nil || status != http.StatusOK {
		return ""
	}

	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return ""
	}

	var md strings.Builder
	for _, item := range items {
		if item.Type != "file" || !isMarkdown(item.Name) {
			continue
		}
		if text := c.fetchRawFile(ctx, item.DownloadURL); text != "" {
			fmt.Fprintf(&md, "\n\n# %s\n%s", item.Name, text)
		}
	}
	return md.String()
}

// fetchRawFile retrieves a raw download URL through the content cache. Cache
// entries are immutable once written, so concurrent fetchers never invalidate.
func (c *Client) fetchRawFile(ctx context.Context, downloadURL string) string {
	if downloadURL == "" {
		return ""
	}
	if c.cache != nil {
		if text, ok := c.cache.Get(ctx, downloadURL); ok {
			return text
		}
	}

	status, body, err := c.fetchWithPermit(ctx, downloadURL)
	if err != nil || status != http.StatusOK {
		if err != nil {
			c.warn("raw file fetch failed", "url", downloadURL, "error", err)
		}
		return ""
	}

	text := string(body)
	if c.cache != nil {
		if err := c.cache.Put(ctx, downloadURL, text); err != nil {
			c.warn("cache write failed", "url", downloadURL, "error", err)
		}
	}
	return text
}

// fetchWithPermit bounds concurrent documentation fetches with the shared
// semaphore so a page of hits cannot burst the API.
func (c *Client) fetchWithPermit(ctx context.Context, rawURL string) (int, []byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return 0, nil, err
	}
	defer c.sem.Release(1)
	return c.apiGet(ctx, rawURL)
}

// truncateWithMarker cuts s so the result including the marker fits limit.
func truncateWithMarker(s string, limit int, marker string) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - len(marker)
	if cut < 0 {
		cut = 0
	}
	return s[:cut] + marker
}

// stripHTML drops tags and script/style bodies from README text; badges and
// inline HTML only waste the byte caps. Markdown text survives untouched.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script,style").Remove()
	return doc.Text()
}

func isMarkdown(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}

func isDocsDir(name string) bool {
	lower := strings.ToLower(name)
	return lower == "docs" || lower == "documentation"
}

type contentItem struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
}
