// Package testdoubles provides test doubles (spies, stubs, dummies) for
// the collaborator interfaces. These are hand-crafted implementations, no
// mock frameworks.
package testdoubles

import (
	"context"
	"fmt"

	"github.com/openwebmedia/rolldeps/domain"
)

// ---------------------------------------------------------------------------
// SpyResolver
// ---------------------------------------------------------------------------

// SpyResolver implements domain.RevisionResolver as a configurable spy.
// Configure Heads (and optionally HeadErrs) for the URLs your test
// resolves, then inspect Calls to verify lookup behavior.
type SpyResolver struct {
	// Heads maps repository URL to the revision HEAD points at.
	Heads map[string]string
	// HeadErrs maps repository URL to a forced failure.
	HeadErrs map[string]error

	// spy: URLs that were resolved, in order
	Calls []string
}

var _ domain.RevisionResolver = (*SpyResolver)(nil)

func (r *SpyResolver) Head(_ context.Context, url string) (string, error) {
	r.Calls = append(r.Calls, url)
	if err, forced := r.HeadErrs[url]; forced {
		return "", &domain.ResolutionError{URL: url, Err: err}
	}
	revision, known := r.Heads[url]
	if !known {
		return "", &domain.ResolutionError{URL: url, Err: fmt.Errorf("no stubbed HEAD for %s", url)}
	}
	return revision, nil
}

// CallCount returns how many lookups were issued for one URL.
func (r *SpyResolver) CallCount(url string) int {
	count := 0
	for _, call := range r.Calls {
		if call == url {
			count++
		}
	}
	return count
}

// ---------------------------------------------------------------------------
// SpyFetcher
// ---------------------------------------------------------------------------

// SpyFetcher implements domain.FileFetcher over in-memory content keyed by
// "path@revision" for files and by revision for commit messages.
type SpyFetcher struct {
	// Files maps "path@revision" to file content.
	Files map[string]string
	// CommitMessages maps revision to commit message.
	CommitMessages map[string]string

	// spy: keys that were fetched, in order
	FetchedFiles   []string
	FetchedCommits []string
}

var _ domain.FileFetcher = (*SpyFetcher)(nil)

func (f *SpyFetcher) FetchFile(_ context.Context, pathBelowRoot, revision string) ([]byte, error) {
	key := pathBelowRoot + "@" + revision
	f.FetchedFiles = append(f.FetchedFiles, key)
	content, known := f.Files[key]
	if !known {
		return nil, &domain.FetchError{Path: pathBelowRoot, Revision: revision, Err: fmt.Errorf("no stubbed content for %s", key)}
	}
	return []byte(content), nil
}

func (f *SpyFetcher) FetchCommitMessage(_ context.Context, revision string) (string, error) {
	f.FetchedCommits = append(f.FetchedCommits, revision)
	message, known := f.CommitMessages[revision]
	if !known {
		return "", &domain.FetchError{Revision: revision, Err: fmt.Errorf("no stubbed commit message for %s", revision)}
	}
	return message, nil
}

// ---------------------------------------------------------------------------
// StubIdentity
// ---------------------------------------------------------------------------

// StubIdentity implements domain.IdentityProvider with a fixed answer.
type StubIdentity struct {
	Email string
	Err   error
}

var _ domain.IdentityProvider = (*StubIdentity)(nil)

func (s *StubIdentity) CurrentUserEmail() (string, error) {
	return s.Email, s.Err
}
