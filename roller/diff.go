package roller

import (
	"context"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/openwebmedia/rolldeps/domain"
	"github.com/openwebmedia/rolldeps/manifest"
)

// Engine computes the changed-entry set between a local manifest index and
// a reference index. Every call is a pure function of the two indexes, the
// configured skip set, and the resolver's answers.
type Engine struct {
	opts     Options
	skip     map[string]struct{}
	resolver domain.RevisionResolver
}

// NewEngine creates a diff engine with the given policy. The resolver is
// consulted for local-only entries (paths absent from the reference index)
// and is wrapped in a CachingResolver so no URL is queried twice per run.
func NewEngine(opts Options, resolver domain.RevisionResolver) *Engine {
	cached, alreadyCached := resolver.(*CachingResolver)
	if !alreadyCached {
		cached = NewCachingResolver(resolver)
	}
	return &Engine{
		opts:     opts,
		skip:     opts.skipSet(),
		resolver: cached,
	}
}

// ChangedDeps calculates the changes needed to bring the local index in
// line with the reference index:
//   - entries shared with the reference index roll to the reference
//     revision (or per-package CIPD version);
//   - entries local to this manifest roll to the HEAD of their own
//     repository;
//   - entries on the skip list are left alone.
//
// The result is ordered lexicographically by path, with the package name
// as tie-breaker for CIPD changes. Structural conflicts between the two
// indexes abort the whole computation with no partial result.
func (e *Engine) ChangedDeps(ctx context.Context, local, remote manifest.Index) ([]domain.Change, error) {
	var changes []domain.Change

	for _, path := range sortedPaths(local) {
		if _, skipped := e.skip[path]; skipped {
			logger.Debugf("Skipping %s (on the skip list)", path)
			continue
		}

		localEntry := local[path]
		remoteEntry, shared := remote[path]
		if !shared {
			change, err := e.rollToHead(ctx, path, localEntry)
			if err != nil {
				return nil, err
			}
			if change != nil {
				changes = append(changes, *change)
			}
			continue
		}

		entryChanges, err := diffShared(path, localEntry, remoteEntry)
		if err != nil {
			return nil, err
		}
		changes = append(changes, entryChanges...)
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].SortKey() < changes[j].SortKey()
	})
	return changes, nil
}

// rollToHead handles an entry not shared with the reference manifest: it
// rolls to the HEAD of the dependency's own repository.
func (e *Engine) rollToHead(ctx context.Context, path string, entry domain.Entry) (*domain.ChangedGitDep, error) {
	dep, isGit := entry.(domain.GitDep)
	if !isGit {
		// A CIPD entry has no repository to resolve; without a reference
		// counterpart it stays pinned.
		logger.Debugf("Keeping local CIPD entry %s pinned", path)
		return nil, nil
	}

	head, err := e.resolver.Head(ctx, dep.URL)
	if err != nil {
		return nil, err
	}
	if dep.Revision == head {
		return nil, nil
	}

	logger.Debugf("Roll dependency %s to %s", path, head)
	return &domain.ChangedGitDep{
		Path:            path,
		URL:             dep.URL,
		CurrentRevision: dep.Revision,
		NewRevision:     head,
	}, nil
}

// diffShared compares the two sides of an entry present in both indexes.
func diffShared(path string, localEntry, remoteEntry domain.Entry) ([]domain.Change, error) {
	switch local := localEntry.(type) {
	case domain.GitDep:
		remote, ok := remoteEntry.(domain.GitDep)
		if !ok {
			return nil, &domain.SchemeMismatchError{Path: path}
		}
		return diffGit(path, local, remote)
	case domain.CipdDep:
		remote, ok := remoteEntry.(domain.CipdDep)
		if !ok {
			return nil, &domain.SchemeMismatchError{Path: path}
		}
		return diffCipd(path, local, remote)
	default:
		return nil, &domain.SchemeMismatchError{Path: path}
	}
}

func diffGit(path string, local, remote domain.GitDep) ([]domain.Change, error) {
	if local.URL != remote.URL {
		return nil, &domain.URLMismatchError{Path: path, LocalURL: local.URL, RemoteURL: remote.URL}
	}
	if local.Revision == remote.Revision {
		return nil, nil
	}

	logger.Debugf("Roll dependency %s to %s", path, remote.Revision)
	return []domain.Change{domain.ChangedGitDep{
		Path:            path,
		URL:             local.URL,
		CurrentRevision: local.Revision,
		NewRevision:     remote.Revision,
	}}, nil
}

// diffCipd emits one change per package whose version moved. The two sides
// must describe the same set of package names; versions are compared with
// their "version:" prefix stripped.
func diffCipd(path string, local, remote domain.CipdDep) ([]domain.Change, error) {
	localVersions := packageVersions(local.Packages)
	remoteVersions := packageVersions(remote.Packages)
	if err := checkPackageSets(path, localVersions, remoteVersions); err != nil {
		return nil, err
	}

	var changes []domain.Change
	for _, pkg := range local.Packages {
		currentVersion := stripVersionPrefix(pkg.Version)
		newVersion := stripVersionPrefix(remoteVersions[pkg.Name])
		if currentVersion == newVersion {
			continue
		}
		logger.Debugf("Roll dependency %s package %s to %s", path, pkg.Name, newVersion)
		changes = append(changes, domain.ChangedCipdPackage{
			Path:           path,
			Package:        pkg.Name,
			CurrentVersion: currentVersion,
			NewVersion:     newVersion,
		})
	}
	return changes, nil
}

func packageVersions(packages []domain.CipdPackage) map[string]string {
	versions := make(map[string]string, len(packages))
	for _, pkg := range packages {
		versions[pkg.Name] = pkg.Version
	}
	return versions
}

func checkPackageSets(path string, local, remote map[string]string) error {
	mismatch := len(local) != len(remote)
	if !mismatch {
		for name := range local {
			if _, present := remote[name]; !present {
				mismatch = true
				break
			}
		}
	}
	if !mismatch {
		return nil
	}
	return &domain.PackageSetMismatchError{
		Path:           path,
		LocalPackages:  sortedKeys(local),
		RemotePackages: sortedKeys(remote),
	}
}

func stripVersionPrefix(version string) string {
	return strings.TrimPrefix(version, "version:")
}

func sortedPaths(index manifest.Index) []string {
	paths := make([]string, 0, len(index))
	for path := range index {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
