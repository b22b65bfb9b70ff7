package roller

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openwebmedia/rolldeps/domain"
)

var clangRevisionPattern = regexp.MustCompile(`^CLANG_REVISION = '(\d+)'$`)

// ClangRevision extracts the pinned Clang revision from the text of a
// Clang update script.
func ClangRevision(script string) (string, error) {
	for _, line := range strings.Split(script, "\n") {
		if match := clangRevisionPattern.FindStringSubmatch(line); match != nil {
			return match[1], nil
		}
	}
	return "", fmt.Errorf("could not find a CLANG_REVISION line in the update script")
}

// ChangedClang compares the Clang revisions pinned by the local and the
// remote update script contents.
func ChangedClang(localScript, remoteScript string) (domain.ClangChange, error) {
	currentRevision, err := ClangRevision(localScript)
	if err != nil {
		return domain.ClangChange{}, fmt.Errorf("local update script: %w", err)
	}
	newRevision, err := ClangRevision(remoteScript)
	if err != nil {
		return domain.ClangChange{}, fmt.Errorf("remote update script: %w", err)
	}
	return domain.ClangChange{CurrentRevision: currentRevision, NewRevision: newRevision}, nil
}
