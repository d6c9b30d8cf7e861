package gitcmd

import (
	"context"
	"strings"
)

type MergeOutcome int

const (
	MergeUpToDate MergeOutcome = iota
	MergeFastForward
	MergeMerged
	MergeConflict
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeUpToDate:
		return "up to date"
	case MergeFastForward:
		return "fast-forward"
	case MergeMerged:
		return "merged"
	case MergeConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Merge integrates target into the checkout at dir. A fast-forward is tried
// first; a merge that cannot complete is aborted so the working tree is left
// as it was, and MergeConflict is returned without an error.
func Merge(ctx context.Context, dir, target string) (MergeOutcome, error) {
	res, err := Run(ctx, []string{"merge", "--ff-only", target}, Options{Dir: dir})
	if err == nil {
		if strings.Contains(res.Stdout, "Already up to date") {
			return MergeUpToDate, nil
		}
		return MergeFastForward, nil
	}
	if refused(res) {
		return MergeConflict, nil
	}

	res, err = Run(ctx, []string{"merge", "--no-edit", target}, Options{Dir: dir})
	if err == nil {
		return MergeMerged, nil
	}
	inProgress, probeErr := MergeInProgress(ctx, dir)
	if probeErr != nil {
		return MergeConflict, probeErr
	}
	if inProgress {
		if abortErr := MergeAbort(ctx, dir); abortErr != nil {
			return MergeConflict, abortErr
		}
		return MergeConflict, nil
	}
	if refused(res) {
		return MergeConflict, nil
	}
	return MergeConflict, failed("merge", res, err)
}

// MergeInProgress reports whether MERGE_HEAD exists in the checkout.
func MergeInProgress(ctx context.Context, dir string) (bool, error) {
	_, ok, err := ResolveCommit(ctx, dir, "MERGE_HEAD")
	return ok, err
}

func MergeAbort(ctx context.Context, dir string) error {
	res, err := Run(ctx, []string{"merge", "--abort"}, Options{Dir: dir})
	if err != nil {
		return failed("merge --abort", res, err)
	}
	return nil
}

// refused reports a merge git declined to start because local changes
// would be overwritten; nothing was modified in that case.
func refused(res Result) bool {
	text := res.Stderr + res.Stdout
	return strings.Contains(text, "would be overwritten by merge") ||
		strings.Contains(text, "Please commit your changes or stash them") ||
		strings.Contains(text, "you have unmerged files") ||
		strings.Contains(text, "You have not concluded your merge")
}
