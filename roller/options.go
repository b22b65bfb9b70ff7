// Package roller implements the dependency-roll engine: it diffs a local
// manifest index against a reference index, resolves un-pinned entries to
// their HEAD revisions, and renders the resulting change list as a commit
// message.
package roller

// ReviewerRule adds a co-reviewer to the generated commit message whenever
// a changed path contains the given substring.
type ReviewerRule struct {
	PathContains string
	Address      string
}

// Options is the immutable roll policy handed to the engine and the
// formatter. A zero value is usable for diffing; the URL fields only
// matter for message generation.
type Options struct {
	// SourceName labels the primary roll in the commit message header
	// (e.g. "chromium_revision").
	SourceName string

	// SourceURL is the base URL of the reference repository; change-log,
	// diff and file URLs are derived from it gitiles-style.
	SourceURL string

	// ThirdPartyName and ThirdPartyURL describe the designated third-party
	// sub-manifest roll.
	ThirdPartyName string
	ThirdPartyURL  string

	// ManifestName is the manifest file name below the reference root,
	// used for the manifest diff link.
	ManifestName string

	// ClangScriptPath is the path of the Clang update script below the
	// reference root.
	ClangScriptPath string

	// SkipPaths lists dependency paths excluded from rolling.
	SkipPaths []string

	// Reviewers is the substring-to-address co-reviewer table.
	Reviewers []ReviewerRule

	// ExtraTrybots is emitted verbatim on the CQ_INCLUDE_TRYBOTS trailer.
	ExtraTrybots []string
}

// CommitURL returns the gitiles view of a revision or revision interval.
func (o Options) CommitURL(interval string) string {
	return o.SourceURL + "/+/" + interval
}

// LogURL returns the gitiles change log of a revision interval.
func (o Options) LogURL(interval string) string {
	return o.SourceURL + "/+log/" + interval
}

// FileURL returns the gitiles view of a file at a revision or interval.
func (o Options) FileURL(interval, path string) string {
	return o.SourceURL + "/+/" + interval + "/" + path
}

// ThirdPartyLogURL returns the change log of the third-party repository.
func (o Options) ThirdPartyLogURL(interval string) string {
	return o.ThirdPartyURL + "/+log/" + interval
}

func (o Options) skipSet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.SkipPaths))
	for _, path := range o.SkipPaths {
		set[path] = struct{}{}
	}
	return set
}
