package scan

import (
	"context"
	"strings"
)

// Oracle is the version-control backend a scan drives.
type Oracle interface {
	ListRefs(ctx context.Context) (branches, tags []string, err error)
	Checkout(ctx context.Context, rev string) error
	LogFullHistory(ctx context.Context, rev string) ([]string, error)
}

// EnumerateRefs returns the cleaned branch names followed by the tag names,
// in the order the oracle reported them. Duplicates are kept.
func EnumerateRefs(ctx context.Context, o Oracle) ([]string, error) {
	branches, tags, err := o.ListRefs(ctx)
	if err != nil {
		return nil, err
	}
	refs := cleanBranches(branches)
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			refs = append(refs, tag)
		}
	}
	return refs, nil
}

// cleanBranches drops alias lines such as "remotes/origin/HEAD -> origin/main"
// and anything naming HEAD, and strips the marker git puts in front of the
// checked-out branch.
func cleanBranches(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.Contains(line, "->") || strings.Contains(line, "HEAD") {
			continue
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "+") {
			line = strings.TrimSpace(line[1:])
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
