package gitcmd

import (
	"context"
	"strings"
)

// SymbolicRef resolves a ref name. ok is false when the ref is not symbolic.
func SymbolicRef(ctx context.Context, dir, ref string) (string, bool, error) {
	res, err := Run(ctx, []string{"symbolic-ref", "--quiet", ref}, Options{Dir: dir})
	if err == nil {
		value := strings.TrimSpace(res.Stdout)
		if value == "" {
			return "", false, nil
		}
		return value, true, nil
	}
	if res.ExitCode == 1 {
		return "", false, nil
	}
	return "", false, failed("symbolic-ref "+ref, res, err)
}
