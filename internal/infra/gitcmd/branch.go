package gitcmd

import "context"

// BranchCreate creates branch at base without checking it out.
func BranchCreate(ctx context.Context, dir, branch, base string) error {
	res, err := Run(ctx, []string{"branch", branch, base}, Options{Dir: dir})
	if err != nil {
		return classified("branch", res, err, refNotFoundRule)
	}
	return nil
}
