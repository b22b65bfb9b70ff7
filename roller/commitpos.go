package roller

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var commitPositionPattern = regexp.MustCompile(`^Cr-Commit-Position: .*#([0-9]+).*$`)

// ParseCommitPosition extracts the commit-position number from a commit
// message. Trailers sit at the bottom, so lines are scanned in reverse.
func ParseCommitPosition(message string) (int, error) {
	lines := strings.Split(message, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		match := commitPositionPattern.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if match == nil {
			continue
		}
		position, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, fmt.Errorf("invalid commit position %q: %w", match[1], err)
		}
		return position, nil
	}
	return 0, fmt.Errorf("no commit position found in commit message")
}
