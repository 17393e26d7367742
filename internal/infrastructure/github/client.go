package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"RepoScout/internal/domain"
	"RepoScout/internal/ports"
)

const defaultAPIURL = "https://api.github.com"

// Config carries connection details and ingestion limits.
type Config struct {
	APIURL              string
	Token               string
	PerPage             int
	MaxResults          int
	SearchInterval      time.Duration
	RateLimitBackoff    time.Duration
	DocFetchConcurrency int64
	ReadmeCap           int
	ArchDocsCap         int
	TotalDocCap         int
}

// Client executes repository searches and assembles per-repository
// documentation bundles against the GitHub REST API.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	cache   ports.ContentCache
	logger  *slog.Logger
}

var _ ports.SearchSource = (*Client)(nil)

// NewClient wires an HTTP client; zero config fields fall back to safe defaults.
func NewClient(cfg Config, cache ports.ContentCache, client *http.Client, logger *slog.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 10
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = cfg.PerPage
	}
	if cfg.SearchInterval <= 0 {
		cfg.SearchInterval = 3 * time.Second
	}
	if cfg.RateLimitBackoff <= 0 {
		cfg.RateLimitBackoff = 10 * time.Second
	}
	if cfg.DocFetchConcurrency <= 0 {
		cfg.DocFetchConcurrency = 3
	}
	if cfg.ReadmeCap <= 0 {
		cfg.ReadmeCap = 500
	}
	if cfg.ArchDocsCap <= 0 {
		cfg.ArchDocsCap = 500
	}
	if cfg.TotalDocCap <= 0 {
		cfg.TotalDocCap = 1000
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		cfg: cfg,
		http: client,
		// The search endpoint enforces a low per-minute quota; bursting
		// guarantees a block, so search requests are effectively serialized.
		limiter: rate.NewLimiter(rate.Every(cfg.SearchInterval), 1),
		sem:     semaphore.NewWeighted(cfg.DocFetchConcurrency),
		cache:   cache,
		logger:  logger,
	}
}

// Discover explodes each combo into one search request per term, executes them
// sequentially, and returns candidates deduplicated by full name (first seen
// wins). In personal-project mode the surviving candidates are enriched with
// activity metadata.
func (c *Client) Discover(ctx context.Context, combos []domain.QueryCombo, mode domain.ProjectType) ([]*domain.CandidateRepository, error) {
	starFilter := mode.StarFilter()

	var queries []string
	for _, combo := range combos {
		queries = append(queries, combo.SearchQueries(starFilter)...)
	}

	if c.cfg.Token == "" {
		c.warn("no GitHub token configured, anonymous quota applies")
	}

	var all []*domain.CandidateRepository
	for i, query := range queries {
		c.info("executing search", "index", i+1, "total", len(queries), "query", query)
		repos, err := c.searchRepositories(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.warn("search query failed", "query", query, "error", err)
		}
		all = append(all, repos...)
	}

	unique := dedupeByFullName(all)
	c.info("discovery complete", "fetched", len(all), "unique", len(unique))

	if mode.EnrichActivity() {
		c.info("enriching candidates with activity metadata", "count", len(unique))
		c.enrichActivity(ctx, unique)
	}

	return unique, nil
}

// searchRepositories pages through one search query. A rate-limit response is
// retried once after a fixed backoff; a second one abandons the remaining
// pages of this query only. Partial results are returned alongside the error.
func (c *Client) searchRepositories(ctx context.Context, query string) ([]*domain.CandidateRepository, error) {
	numPages := c.cfg.MaxResults / c.cfg.PerPage
	if c.cfg.MaxResults%c.cfg.PerPage != 0 {
		numPages++
	}

	var out []*domain.CandidateRepository
	for page := 1; page <= numPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return out, err
		}

		status, body, err := c.searchPage(ctx, query, page)
		if err != nil {
			c.warn("search page failed", "page", page, "error", err)
			continue
		}

		if status == http.StatusForbidden || status == http.StatusTooManyRequests {
			c.warn("rate limit hit, backing off", "status", status, "backoff", c.cfg.RateLimitBackoff)
			if err := sleepCtx(ctx, c.cfg.RateLimitBackoff); err != nil {
				return out, err
			}
			status, body, err = c.searchPage(ctx, query, page)
			if err != nil {
				c.warn("search retry failed", "page", page, "error", err)
				continue
			}
			if status == http.StatusForbidden || status == http.StatusTooManyRequests {
				return out, fmt.Errorf("rate limited after retry (status %d)", status)
			}
		}

		if status != http.StatusOK {
			c.warn("unexpected search status", "status", status, "page", page)
			continue
		}

		var parsed searchResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			c.warn("cannot decode search page", "page", page, "error", err)
			continue
		}
		if len(parsed.Items) == 0 {
			continue
		}

		out = append(out, c.collectCandidates(ctx, parsed.Items)...)
	}

	return out, nil
}

// collectCandidates fans out documentation fetches for one result page. API
// result order is preserved; a failed bundle degrades that candidate to the
// placeholder documentation rather than dropping it.
func (c *Client) collectCandidates(ctx context.Context, items []searchItem) []*domain.CandidateRepository {
	bundles := make([]docBundle, len(items))

	var group errgroup.Group
	for i := range items {
		group.Go(func() error {
			bundles[i] = c.fetchDocumentation(ctx, items[i].FullName)
			return nil
		})
	}
	_ = group.Wait()

	candidates := make([]*domain.CandidateRepository, 0, len(items))
	for i, item := range items {
		cloneURL := item.CloneURL
		if cloneURL == "" {
			cloneURL = fmt.Sprintf("https://github.com/%s.git", item.FullName)
		}
		cand := &domain.CandidateRepository{
			FullName:     item.FullName,
			Title:        item.Name,
			Description:  item.Description,
			Link:         item.HTMLURL,
			CloneURL:     cloneURL,
			CombinedDoc:  bundles[i].Combined,
			ReadmeSize:   bundles[i].ReadmeSize,
			ArchDocsSize: bundles[i].ArchSize,
			Stars:        item.Stars,
			OpenIssues:   item.OpenIssues,
			SizeKB:       item.Size,
			LicenseKey:   "unknown",
			LicenseName:  "Unknown",
			FileList:     bundles[i].FileList,
		}
		if item.License != nil {
			if item.License.Key != "" {
				cand.LicenseKey = item.License.Key
			}
			if item.License.Name != "" {
				cand.LicenseName = item.License.Name
			}
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

func (c *Client) searchPage(ctx context.Context, query string, page int) (int, []byte, error) {
	endpoint := c.cfg.APIURL + "/search/repositories"
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	params.Set("page", strconv.Itoa(page))
	return c.apiGet(ctx, endpoint+"?"+params.Encode())
}

// apiGet performs an authenticated GET and returns status plus body. A missing
// token degrades to the anonymous quota rather than failing.
func (c *Client) apiGet(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "RepoScout/1.0")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "token "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func dedupeByFullName(repos []*domain.CandidateRepository) []*domain.CandidateRepository {
	seen := make(map[string]struct{}, len(repos))
	unique := make([]*domain.CandidateRepository, 0, len(repos))
	for _, repo := range repos {
		if _, ok := seen[repo.FullName]; ok {
			continue
		}
		seen[repo.FullName] = struct{}{}
		unique = append(unique, repo)
	}
	return unique
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Name        string       `json:"name"`
	FullName    string       `json:"full_name"`
	Description string       `json:"description"`
	HTMLURL     string       `json:"html_url"`
	CloneURL    string       `json:"clone_url"`
	Stars       int          `json:"stargazers_count"`
	OpenIssues  int          `json:"open_issues_count"`
	Size        int          `json:"size"`
	License     *licenseInfo `json:"license"`
}

type licenseInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (c *Client) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
