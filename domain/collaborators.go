package domain

import "context"

// RevisionResolver resolves the revision a remote repository's HEAD points
// at. Implementations own transport, authentication, and retry policy; the
// core never retries.
type RevisionResolver interface {
	// Head returns the commit hash HEAD currently points at for the given
	// repository URL. Failures are reported as *ResolutionError.
	Head(ctx context.Context, url string) (string, error)
}

// FileFetcher reads files and commit messages from the reference
// repository at a pinned revision.
type FileFetcher interface {
	// FetchFile returns the content of a file below the repository root at
	// the given revision. Failures are reported as *FetchError.
	FetchFile(ctx context.Context, pathBelowRoot, revision string) ([]byte, error)

	// FetchCommitMessage returns the full commit message of a revision.
	// Failures are reported as *FetchError.
	FetchCommitMessage(ctx context.Context, revision string) (string, error)
}

// IdentityProvider supplies the identity of the user running the roll,
// used to seed the review trailer of the generated commit message.
type IdentityProvider interface {
	// CurrentUserEmail returns the e-mail address of the current user.
	CurrentUserEmail() (string, error)
}
