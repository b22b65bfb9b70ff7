package manifest

import (
	"fmt"
	"strings"

	"github.com/openwebmedia/rolldeps/domain"
)

// Index is a flat, conflict-resolved mapping of checkout path to entry.
type Index map[string]domain.Entry

// BuildIndex flattens raw deps plus the selected deps_os platforms into an
// Index. The base deps are inserted first; each requested platform is then
// processed in order, inserting entries only for paths not already present
// (platform sections never override the base).
//
// A bare string value is split on the first "@" into url and revision. An
// object with dep_type "cipd" becomes a CIPD entry; any other object form
// is read as {url, revision}.
func BuildIndex(deps map[string]RawDep, depsOS map[string]map[string]RawDep, platforms []string) (Index, error) {
	index := make(Index, len(deps))
	if err := addEntries(index, deps); err != nil {
		return nil, err
	}
	for _, platform := range platforms {
		if err := addEntries(index, depsOS[platform]); err != nil {
			return nil, err
		}
	}
	return index, nil
}

func addEntries(index Index, deps map[string]RawDep) error {
	for path, raw := range deps {
		if _, present := index[path]; present {
			continue
		}
		entry, err := entryFrom(path, raw)
		if err != nil {
			return err
		}
		index[path] = entry
	}
	return nil
}

func entryFrom(path string, raw RawDep) (domain.Entry, error) {
	if raw.IsBare {
		url, revision, found := strings.Cut(raw.Bare, "@")
		if !found {
			return nil, &domain.MalformedEntryError{Path: path, Reason: "expected \"url@revision\""}
		}
		return domain.GitDep{Path: path, URL: url, Revision: revision}, nil
	}

	if depType, _ := raw.Fields["dep_type"].(string); depType == "cipd" {
		return cipdEntryFrom(path, raw.Fields)
	}

	url, _ := raw.Fields["url"].(string)
	if url == "" {
		return nil, &domain.MalformedEntryError{Path: path, Reason: "object form lacks a url"}
	}
	revision, _ := raw.Fields["revision"].(string)
	if revision == "" {
		// The url field may carry the pin itself, as in the bare form.
		var found bool
		url, revision, found = strings.Cut(url, "@")
		if !found {
			return nil, &domain.MalformedEntryError{Path: path, Reason: "object form lacks a revision"}
		}
	}
	return domain.GitDep{Path: path, URL: url, Revision: revision}, nil
}

func cipdEntryFrom(path string, fields map[string]any) (domain.Entry, error) {
	rawPackages, ok := fields["packages"].([]any)
	if !ok {
		return nil, &domain.MalformedEntryError{Path: path, Reason: "CIPD entry lacks packages"}
	}

	packages := make([]domain.CipdPackage, 0, len(rawPackages))
	for i, rawPkg := range rawPackages {
		pkg, isDict := rawPkg.(map[string]any)
		if !isDict {
			return nil, &domain.MalformedEntryError{Path: path, Reason: fmt.Sprintf("package %d is not a dict", i)}
		}
		name, _ := pkg["package"].(string)
		version, _ := pkg["version"].(string)
		if name == "" || version == "" {
			return nil, &domain.MalformedEntryError{Path: path, Reason: fmt.Sprintf("package %d lacks package or version", i)}
		}
		packages = append(packages, domain.CipdPackage{Name: name, Version: version})
	}
	return domain.CipdDep{Path: path, Packages: packages}, nil
}

// Matching returns every entry mounted at or below dirPath. For example
// "src/testing" matches both "src/testing/gtest" and "src/testing/gmock",
// while "src/build" does not match "src/buildtools".
func (idx Index) Matching(dirPath string) []domain.Entry {
	prefix := strings.Split(dirPath, "/")
	var result []domain.Entry
	for path, entry := range idx {
		if path == dirPath {
			result = append(result, entry)
			continue
		}
		parts := strings.Split(path, "/")
		if len(parts) > len(prefix) && equalSegments(parts[:len(prefix)], prefix) {
			result = append(result, entry)
		}
	}
	return result
}

func equalSegments(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
