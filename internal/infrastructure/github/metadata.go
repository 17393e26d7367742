package github

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/sync/errgroup"

	"RepoScout/internal/domain"
)

// enrichActivity runs the personal-project metadata pass: branch, pull
// request, contributor, and commit counts per surviving candidate, under the
// same bounded-concurrency discipline as documentation fetches. Probe failures
// leave zero counts; the rubric treats missing data optimistically.
func (c *Client) enrichActivity(ctx context.Context, repos []*domain.CandidateRepository) {
	var group errgroup.Group
	for _, repo := range repos {
		group.Go(func() error {
			repo.Activity = c.fetchActivityMetadata(ctx, repo.FullName)
			return nil
		})
	}
	_ = group.Wait()
}

func (c *Client) fetchActivityMetadata(ctx context.Context, fullName string) *domain.ActivityMetadata {
	base := c.cfg.APIURL + "/repos/" + fullName
	meta := &domain.ActivityMetadata{}
	// The counts are probe-style: one page of up to 100 entries per resource.
	meta.BranchCount = c.countListing(ctx, base+"/branches?per_page=100")
	meta.PullRequestCount = c.countListing(ctx, base+"/pulls?state=all&per_page=100")
	meta.ContributorCount = c.countListing(ctx, base+"/contributors?per_page=100")
	meta.CommitCount = c.countListing(ctx, base+"/commits?per_page=100")
	return meta
}

// countListing returns the length of one JSON array page, or zero on any
// failure. The caller must not distinguish "empty" from "unreachable".
func (c *Client) countListing(ctx context.Context, rawURL string) int {
	status, body, err := c.fetchWithPermit(ctx, rawURL)
	if err != nil || status != http.StatusOK {
		if err != nil {
			c.warn("metadata probe failed", "url", rawURL, "error", err)
		}
		return 0
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return 0
	}
	return len(entries)
}
