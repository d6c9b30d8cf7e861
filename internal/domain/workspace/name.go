package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/tasuku43/wsm/internal/infra/gitcmd"
)

// ValidateName checks that name can be both a directory under worktrees/
// and a default branch name.
func ValidateName(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("workspace name is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid workspace name %q: must be a single path segment", name)
	}
	// A local check; it runs even after an interrupt so callers can still
	// report per-repository results.
	if err := gitcmd.CheckRefFormatBranch(context.WithoutCancel(ctx), name); err != nil {
		return fmt.Errorf("invalid workspace name %q: %w", name, err)
	}
	return nil
}
