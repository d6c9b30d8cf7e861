package gitcmd

import "context"

// FetchBranch updates refs/remotes/origin/<branch> from origin.
func FetchBranch(ctx context.Context, dir, branch string) error {
	refspec := "+refs/heads/" + branch + ":refs/remotes/origin/" + branch
	res, err := Run(ctx, []string{"fetch", "--no-tags", "origin", refspec}, Options{Dir: dir})
	if err != nil {
		return classified("fetch", res, err, refNotFoundRule, networkRule)
	}
	return nil
}
