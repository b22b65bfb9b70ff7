package domain

// GitDep represents a single git-hosted dependency pinned to an exact revision.
type GitDep struct {
	Path     string // Checkout path, unique within an index
	URL      string // Repository URL, without the @revision suffix
	Revision string // Pinned commit hash
}

// CipdPackage is one named, versioned binary package inside a CIPD entry.
type CipdPackage struct {
	Name    string // Package name (e.g. "infra/tools/luci/cipd/${platform}")
	Version string // Version string, "version:" prefixed in manifests
}

// CipdDep represents one or more CIPD packages mounted at a single path.
type CipdDep struct {
	Path     string
	Packages []CipdPackage
}

// Entry is one dependency record in a manifest index, either a GitDep or a
// CipdDep. The interface is sealed so the diff algorithm can match on the
// two kinds exhaustively.
type Entry interface {
	// EntryPath returns the checkout path this entry is mounted at.
	EntryPath() string

	sealedEntry()
}

func (d GitDep) EntryPath() string  { return d.Path }
func (d CipdDep) EntryPath() string { return d.Path }

func (GitDep) sealedEntry()  {}
func (CipdDep) sealedEntry() {}

// ChangedGitDep records a git dependency whose pinned revision moved.
type ChangedGitDep struct {
	Path            string
	URL             string
	CurrentRevision string
	NewRevision     string
}

// ChangedCipdPackage records a CIPD package whose version moved. Versions
// are stored with the "version:" prefix already stripped.
type ChangedCipdPackage struct {
	Path           string
	Package        string
	CurrentVersion string
	NewVersion     string
}

// Change is one element of a diff result, either a ChangedGitDep or a
// ChangedCipdPackage. Results are ordered by SortKey for reproducible
// commit messages.
type Change interface {
	// ChangePath returns the checkout path the change applies to.
	ChangePath() string

	// SortKey returns the deterministic ordering key: the path, with the
	// package name as tie-breaker for CIPD changes.
	SortKey() string

	sealedChange()
}

func (c ChangedGitDep) ChangePath() string      { return c.Path }
func (c ChangedCipdPackage) ChangePath() string { return c.Path }

func (c ChangedGitDep) SortKey() string      { return c.Path }
func (c ChangedCipdPackage) SortKey() string { return c.Path + "\x00" + c.Package }

func (ChangedGitDep) sealedChange()      {}
func (ChangedCipdPackage) sealedChange() {}

// RevisionUpdate holds the revision ranges a roll moves across: the primary
// reference manifest and its designated third-party sub-manifest.
type RevisionUpdate struct {
	CurrentRevision           string
	NewRevision               string
	CurrentThirdPartyRevision string
	NewThirdPartyRevision     string
}

// ClangChange is the Clang compiler revision pair extracted from the local
// and remote update scripts.
type ClangChange struct {
	CurrentRevision string
	NewRevision     string
}

// Changed reports whether the roll moves the Clang revision at all.
func (c ClangChange) Changed() bool {
	return c.CurrentRevision != c.NewRevision
}
