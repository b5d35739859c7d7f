package story

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/typist/internal/model"
)

// validateNodes performs all structural checks on the node set.
// Returns a combined error describing all problems found, or nil if valid.
func validateNodes(start string, nodes []model.StoryNode) error {
	var errs []string

	if len(nodes) == 0 {
		errs = append(errs, "no nodes defined")
	}

	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			errs = append(errs, "node with empty ID")
			continue
		}
		if ids[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate node ID: %q", n.ID))
		}
		ids[n.ID] = true
	}

	if start == "" {
		errs = append(errs, "start node ID is empty")
	} else if len(nodes) > 0 && !ids[start] {
		errs = append(errs, fmt.Sprintf("start node %q does not exist", start))
	}

	for _, n := range nodes {
		if n.Title == "" {
			errs = append(errs, fmt.Sprintf("node %q has no title", n.ID))
		}
		if strings.TrimSpace(n.LessonKeys) == "" {
			errs = append(errs, fmt.Sprintf("node %q has no lesson keys", n.ID))
		}
		for i, c := range n.Choices {
			if c.Label == "" {
				errs = append(errs, fmt.Sprintf("node %q choice %d has no label", n.ID, i+1))
			}
			if !ids[c.Target] {
				errs = append(errs, fmt.Sprintf("node %q choice %q references nonexistent node %q", n.ID, c.Label, c.Target))
			}
		}
		if n.FailureNext != "" && !ids[n.FailureNext] {
			errs = append(errs, fmt.Sprintf("node %q failure path references nonexistent node %q", n.ID, n.FailureNext))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("story graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
