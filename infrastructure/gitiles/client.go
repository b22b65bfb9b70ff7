// Package gitiles implements the file-fetch collaborator against a
// gitiles-served repository over HTTP.
package gitiles

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/openwebmedia/rolldeps/domain"
)

const defaultRetryMax = 3

// Client reads files and commit messages from a gitiles instance. Gitiles
// serves raw content base64-encoded behind ?format=TEXT; the client
// decodes it transparently. Retry policy lives here, never in the core.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

var _ domain.FileFetcher = (*Client)(nil)

// NewClient creates a gitiles client for the repository at baseURL
// (e.g. "https://chromium.googlesource.com/chromium/src").
func NewClient(baseURL string) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = defaultRetryMax
	httpClient.Logger = nil
	return &Client{baseURL: baseURL, http: httpClient}
}

// FetchFile returns the content of a file below the repository root at the
// given revision.
func (c *Client) FetchFile(ctx context.Context, pathBelowRoot, revision string) ([]byte, error) {
	url := fmt.Sprintf("%s/+/%s/%s?format=TEXT", c.baseURL, revision, pathBelowRoot)
	content, err := c.fetchBase64(ctx, url)
	if err != nil {
		return nil, &domain.FetchError{Path: pathBelowRoot, Revision: revision, Err: err}
	}
	return content, nil
}

// FetchCommitMessage returns the commit message of a revision.
func (c *Client) FetchCommitMessage(ctx context.Context, revision string) (string, error) {
	url := fmt.Sprintf("%s/+/%s?format=TEXT", c.baseURL, revision)
	content, err := c.fetchBase64(ctx, url)
	if err != nil {
		return "", &domain.FetchError{Path: "", Revision: revision, Err: err}
	}
	return string(content), nil
}

func (c *Client) fetchBase64(ctx context.Context, url string) ([]byte, error) {
	logger.Debugf("GET %s", url)

	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", response.Status)
	}

	encoded, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode gitiles response: %w", err)
	}
	return decoded, nil
}
