package gitcmd

import (
	"context"
	"strings"
)

// RevParse runs git rev-parse and returns trimmed stdout.
func RevParse(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := append([]string{"rev-parse"}, args...)
	res, err := Run(ctx, fullArgs, Options{Dir: dir})
	if err != nil {
		return "", failed("rev-parse "+strings.Join(args, " "), res, err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ResolveCommit returns the commit a revision points at. ok is false when
// the revision does not name a commit.
func ResolveCommit(ctx context.Context, dir, rev string) (string, bool, error) {
	res, err := Run(ctx, []string{"rev-parse", "--verify", "--quiet", rev + "^{commit}"}, Options{Dir: dir})
	if err == nil {
		return strings.TrimSpace(res.Stdout), true, nil
	}
	if res.ExitCode == 1 || res.ExitCode == 128 {
		return "", false, nil
	}
	return "", false, failed("rev-parse "+rev, res, err)
}
