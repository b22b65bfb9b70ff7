package roller

import (
	"fmt"
	"strings"

	"github.com/openwebmedia/rolldeps/domain"
)

// CommitPositions is the commit-position pair of the reference revisions a
// roll moves across.
type CommitPositions struct {
	Current int
	New     int
}

// CommitMessage renders the deterministic commit message for a roll. It is
// a pure function of its inputs: the revision ranges, the commit-position
// pair, the ordered change list, the Clang revision pair, and the injected
// identity of the user running the roll.
func CommitMessage(
	opts Options,
	update domain.RevisionUpdate,
	positions CommitPositions,
	changes []domain.Change,
	clang domain.ClangChange,
	userEmail string,
) string {
	interval := shortInterval(update.CurrentRevision, update.NewRevision)
	thirdPartyInterval := shortInterval(update.CurrentThirdPartyRevision, update.NewThirdPartyRevision)
	positionInterval := fmt.Sprintf("%d:%d", positions.Current, positions.New)

	lines := []string{
		fmt.Sprintf("Roll %s %s (%s)\n", opts.SourceName, interval, positionInterval),
		fmt.Sprintf("Change log: %s", opts.LogURL(interval)),
		fmt.Sprintf("Full diff: %s\n", opts.CommitURL(interval)),
	}
	if update.CurrentThirdPartyRevision != "" || update.NewThirdPartyRevision != "" {
		lines = append(lines,
			fmt.Sprintf("Roll %s %s", opts.ThirdPartyName, thirdPartyInterval),
			fmt.Sprintf("Change log: %s\n", opts.ThirdPartyLogURL(thirdPartyInterval)),
		)
	}

	var reviewers []string
	if len(changes) > 0 {
		lines = append(lines, "Changed dependencies:")
		for _, change := range changes {
			lines = append(lines, changeLine(change))
			reviewers = appendReviewers(reviewers, opts.Reviewers, change.ChangePath())
		}
		lines = append(lines, fmt.Sprintf("%s diff: %s\n", opts.ManifestName, opts.FileURL(interval, opts.ManifestName)))
	} else {
		lines = append(lines, "No dependencies changed.")
	}

	if clang.Changed() {
		lines = append(lines,
			fmt.Sprintf("Clang version changed %s:%s", clang.CurrentRevision, clang.NewRevision),
			fmt.Sprintf("Details: %s\n", opts.FileURL(interval, opts.ClangScriptPath)),
		)
	} else {
		lines = append(lines, "No update to Clang.\n")
	}

	// The review trailer must be non-empty for the review tool to pick it
	// up, so it is always seeded with the user's own identity.
	lines = append(lines, "TBR="+strings.Join(append([]string{userEmail}, reviewers...), ","))
	lines = append(lines, "BUG=None")
	if len(opts.ExtraTrybots) > 0 {
		lines = append(lines, "CQ_INCLUDE_TRYBOTS="+strings.Join(opts.ExtraTrybots, ";"))
	}
	return strings.Join(lines, "\n")
}

func changeLine(change domain.Change) string {
	switch c := change.(type) {
	case domain.ChangedCipdPackage:
		return fmt.Sprintf("* %s: %s..%s", c.Path, c.CurrentVersion, c.NewVersion)
	case domain.ChangedGitDep:
		return fmt.Sprintf("* %s: %s/+log/%s", c.Path, c.URL, shortInterval(c.CurrentRevision, c.NewRevision))
	default:
		return ""
	}
}

// appendReviewers adds the addresses of every rule whose substring occurs
// in path, keeping rule order and dropping duplicates.
func appendReviewers(reviewers []string, rules []ReviewerRule, path string) []string {
	for _, rule := range rules {
		if !strings.Contains(path, rule.PathContains) {
			continue
		}
		duplicate := false
		for _, existing := range reviewers {
			if existing == rule.Address {
				duplicate = true
				break
			}
		}
		if !duplicate {
			reviewers = append(reviewers, rule.Address)
		}
	}
	return reviewers
}

// shortInterval renders a "current..new" pair with revisions truncated to
// ten characters, the conventional short-hash width in roll messages.
func shortInterval(current, target string) string {
	return shortRevision(current) + ".." + shortRevision(target)
}

func shortRevision(revision string) string {
	if len(revision) > 10 {
		return revision[:10]
	}
	return revision
}
