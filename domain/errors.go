package domain

import (
	"fmt"
	"strings"
)

// ParseError reports malformed manifest text or an unresolvable variable
// reference.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("manifest parse error at %d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("manifest parse error: %s", e.Msg)
}

// MalformedEntryError reports a deps value that matches none of the
// supported shapes (bare "url@revision" string, url/revision object, or
// CIPD object with packages).
type MalformedEntryError struct {
	Path   string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed deps entry %q: %s", e.Path, e.Reason)
}

// SchemeMismatchError reports a path that is a git dependency on one side
// of a diff and a CIPD dependency on the other. The two manifests are not
// comparable.
type SchemeMismatchError struct {
	Path string
}

func (e *SchemeMismatchError) Error() string {
	return fmt.Sprintf("entry %q is a git dependency in one manifest and a CIPD dependency in the other", e.Path)
}

// URLMismatchError reports a shared git dependency whose URL differs
// between the local and the reference manifest.
type URLMismatchError struct {
	Path      string
	LocalURL  string
	RemoteURL string
}

func (e *URLMismatchError) Error() string {
	return fmt.Sprintf("entry %q has a different URL locally (%s) than in the reference manifest (%s)",
		e.Path, e.LocalURL, e.RemoteURL)
}

// PackageSetMismatchError reports a CIPD path whose package-name sets
// differ between the two manifests, making the merge ill-defined.
type PackageSetMismatchError struct {
	Path           string
	LocalPackages  []string
	RemotePackages []string
}

func (e *PackageSetMismatchError) Error() string {
	return fmt.Sprintf("CIPD entry %q has mismatched package sets: local [%s] vs remote [%s]",
		e.Path, strings.Join(e.LocalPackages, ", "), strings.Join(e.RemotePackages, ", "))
}

// ResolutionError wraps a collaborator failure while resolving the HEAD
// revision of a repository.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve HEAD of %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError wraps a collaborator failure while fetching a remote file at
// a pinned revision.
type FetchError struct {
	Path     string
	Revision string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s at %s: %v", e.Path, e.Revision, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
