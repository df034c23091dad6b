// Package registry talks to the release hosting service: listing published
// tags, downloading archives, and fetching release notes.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/release"
)

const userAgent = "ashell-install"

// Client queries the GitHub API for a single repository. The zero timeout
// of the embedded http.Client is deliberate; every call site bounds the
// request with a context.
type Client struct {
	endpoint   string
	owner      string
	repo       string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a registry client for owner/repo at the given API
// endpoint. timeout bounds each request.
func NewClient(endpoint, owner, repo string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		owner:      owner,
		repo:       repo,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logging.GetLogger("registry"),
	}
}

// tagEntry mirrors one element of the GitHub tags response
type tagEntry struct {
	Name       string `json:"name"`
	ZipballURL string `json:"zipball_url"`
}

// ListTags returns every published tag. A not-found response is a valid
// empty result, not an error; any other failure (transport error, timeout,
// unexpected status) is fatal to resolution.
func (c *Client) ListTags(ctx context.Context) ([]release.TagEntry, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/tags", c.endpoint, c.owner, c.repo)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrResolveRegistry, "failed to build registry request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrResolveRegistry, "registry request failed").
			WithDetail("url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug().Str("url", url).Msg("Registry reports no tags for package")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrResolveRegistry, "registry returned status %d", resp.StatusCode).
			WithDetail("url", url)
	}

	var entries []tagEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, errors.ErrResolveRegistry, "failed to decode registry response")
	}

	tags := make([]release.TagEntry, 0, len(entries))
	for _, e := range entries {
		tags = append(tags, release.TagEntry{Name: e.Name, ZipballURL: e.ZipballURL})
	}

	c.logger.Debug().Int("count", len(tags)).Msg("Listed registry tags")
	return tags, nil
}

// DownloadArchive streams the archive at url into dest. Single attempt;
// any failure is fatal to the run.
func (c *Client) DownloadArchive(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrTransferDownload, "failed to build download request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrTransferDownload, "archive download failed").
			WithDetail("url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Newf(errors.ErrTransferDownload, "archive download returned status %d", resp.StatusCode).
			WithDetail("url", url)
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileCreate, "failed to create archive file")
	}
	defer func() { _ = out.Close() }()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.ErrTransferDownload, "failed to write archive file")
	}

	c.logger.Debug().Str("url", url).Int64("bytes", written).Msg("Downloaded archive")
	return nil
}

// ChangelogDocument fetches the repository's top-level CHANGELOG.md as raw
// markdown. Returns an empty string when the repository has none.
func (c *Client) ChangelogDocument(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/CHANGELOG.md", c.endpoint, c.owner, c.repo)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github.raw+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReleaseNotes fetches the release body published for tag. It returns an
// empty string when the registry has no notes for the tag; callers treat
// notes as best-effort.
func (c *Client) ReleaseNotes(ctx context.Context, tag string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.endpoint, c.owner, c.repo, tag)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var payload struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Body, nil
}
