package gitcmd

import (
	"context"
)

// CloneBare creates a bare clone at path and configures origin so later
// fetches populate refs/remotes/origin/*.
func CloneBare(ctx context.Context, url, path string) error {
	res, err := Run(ctx, []string{"clone", "--bare", url, path}, Options{})
	if err != nil {
		return classified("clone", res, err, networkRule, notFoundRule, pathExistsRule)
	}
	res, err = Run(ctx, []string{"config", "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*"}, Options{Dir: path})
	if err != nil {
		return failed("config remote.origin.fetch", res, err)
	}
	return nil
}
