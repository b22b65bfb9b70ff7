package roller

import (
	"strings"

	"github.com/openwebmedia/rolldeps/domain"
)

// UpdateManifest rewrites the local manifest text to reflect a computed
// roll: the primary and third-party range variables move to their new
// revisions, and each changed entry's pin is replaced in place. The
// result is a new string; writing it anywhere is the caller's business.
func UpdateManifest(content string, update domain.RevisionUpdate, changes []domain.Change) string {
	if update.CurrentRevision != "" {
		content = strings.ReplaceAll(content, update.CurrentRevision, update.NewRevision)
	}
	if update.CurrentThirdPartyRevision != "" {
		content = strings.ReplaceAll(content, update.CurrentThirdPartyRevision, update.NewThirdPartyRevision)
	}

	for _, change := range changes {
		switch c := change.(type) {
		case domain.ChangedGitDep:
			content = replaceGitPin(content, c)
		case domain.ChangedCipdPackage:
			content = strings.ReplaceAll(content, "version:"+c.CurrentVersion, "version:"+c.NewVersion)
		}
	}
	return content
}

// replaceGitPin rewrites one entry's pin without touching other entries
// that happen to share the same revision string. The bare "url@revision"
// form is anchored on the entry's URL; the object form keeps its pin in a
// quoted revision field.
func replaceGitPin(content string, c domain.ChangedGitDep) string {
	bare := c.URL + "@" + c.CurrentRevision
	if strings.Contains(content, bare) {
		return strings.ReplaceAll(content, bare, c.URL+"@"+c.NewRevision)
	}
	for _, q := range []string{"'", `"`} {
		field := q + "revision" + q + ": " + q + c.CurrentRevision + q
		if strings.Contains(content, field) {
			return strings.ReplaceAll(content, field, q+"revision"+q+": "+q+c.NewRevision+q)
		}
	}
	return strings.ReplaceAll(content, c.CurrentRevision, c.NewRevision)
}
