package gitcmd

import (
	"context"
	"strings"
)

// ShowRef verifies a ref and returns its hash when present.
func ShowRef(ctx context.Context, dir, ref string) (string, bool, error) {
	res, err := Run(ctx, []string{"show-ref", "--verify", ref}, Options{Dir: dir})
	if err == nil {
		fields := strings.Fields(strings.TrimSpace(res.Stdout))
		if len(fields) >= 1 {
			return fields[0], true, nil
		}
		return "", true, nil
	}
	if res.ExitCode == 1 || (res.ExitCode == 128 && strings.Contains(res.Stderr, "not a valid ref")) {
		return "", false, nil
	}
	return "", false, failed("show-ref", res, err)
}

// HasAnyRef reports whether the repository has at least one ref.
func HasAnyRef(ctx context.Context, dir string) (bool, error) {
	res, err := Run(ctx, []string{"for-each-ref", "--count=1", "--format=%(refname)"}, Options{Dir: dir})
	if err != nil {
		return false, failed("for-each-ref", res, err)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}
