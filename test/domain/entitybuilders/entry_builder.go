package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/openwebmedia/rolldeps/domain"
)

// GitDepBuilder helps create test git dependencies with a fluent interface.
type GitDepBuilder struct {
	*testkit.BaseBuilder
	path     string
	url      string
	revision string
}

// NewGitDepBuilder creates a new git dependency builder with sensible defaults.
func NewGitDepBuilder() *GitDepBuilder {
	return &GitDepBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		path:        "src/third_party/test",
		url:         "https://chromium.googlesource.com/test",
		revision:    "1111111111111111111111111111111111111111",
	}
}

// WithPath sets the checkout path.
func (b *GitDepBuilder) WithPath(path string) *GitDepBuilder {
	b.path = path
	return b
}

// WithURL sets the repository URL.
func (b *GitDepBuilder) WithURL(url string) *GitDepBuilder {
	b.url = url
	return b
}

// WithRevision sets the pinned revision.
func (b *GitDepBuilder) WithRevision(revision string) *GitDepBuilder {
	b.revision = revision
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *GitDepBuilder) Build() interface{} {
	return b.BuildGitDep()
}

// BuildGitDep creates the dependency with a concrete return type.
func (b *GitDepBuilder) BuildGitDep() domain.GitDep {
	return domain.GitDep{
		Path:     b.path,
		URL:      b.url,
		Revision: b.revision,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *GitDepBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.path = "src/third_party/test"
	b.url = "https://chromium.googlesource.com/test"
	b.revision = "1111111111111111111111111111111111111111"
	return b
}

// Clone creates a deep copy of the GitDepBuilder.
func (b *GitDepBuilder) Clone() testkit.Builder {
	return &GitDepBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		path:        b.path,
		url:         b.url,
		revision:    b.revision,
	}
}

// CipdDepBuilder helps create test CIPD dependencies with a fluent interface.
type CipdDepBuilder struct {
	*testkit.BaseBuilder
	path     string
	packages []domain.CipdPackage
}

// NewCipdDepBuilder creates a new CIPD dependency builder with one default package.
func NewCipdDepBuilder() *CipdDepBuilder {
	return &CipdDepBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		path:        "src/third_party/cipd-test",
		packages: []domain.CipdPackage{
			{Name: "test/package", Version: "version:1.0"},
		},
	}
}

// WithPath sets the checkout path.
func (b *CipdDepBuilder) WithPath(path string) *CipdDepBuilder {
	b.path = path
	return b
}

// WithPackage appends a package.
func (b *CipdDepBuilder) WithPackage(name, version string) *CipdDepBuilder {
	b.packages = append(b.packages, domain.CipdPackage{Name: name, Version: version})
	return b
}

// WithPackages replaces the package list.
func (b *CipdDepBuilder) WithPackages(packages ...domain.CipdPackage) *CipdDepBuilder {
	b.packages = packages
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *CipdDepBuilder) Build() interface{} {
	return b.BuildCipdDep()
}

// BuildCipdDep creates the dependency with a concrete return type.
func (b *CipdDepBuilder) BuildCipdDep() domain.CipdDep {
	return domain.CipdDep{
		Path:     b.path,
		Packages: append([]domain.CipdPackage(nil), b.packages...),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *CipdDepBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.path = "src/third_party/cipd-test"
	b.packages = []domain.CipdPackage{{Name: "test/package", Version: "version:1.0"}}
	return b
}

// Clone creates a deep copy of the CipdDepBuilder.
func (b *CipdDepBuilder) Clone() testkit.Builder {
	return &CipdDepBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		path:        b.path,
		packages:    append([]domain.CipdPackage(nil), b.packages...),
	}
}
