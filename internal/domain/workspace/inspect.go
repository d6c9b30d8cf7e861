package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/infra/gitcmd"
)

// Inspection is the read-only view of one checkout.
type Inspection struct {
	Path   string
	State  State
	Kind   CheckoutKind
	Branch string
	Head   string
	Detail string
	Dirty  DirtySummary
	Err    error
}

type Inspector struct {
	Backend Backend
}

func NewInspector(backend Backend) *Inspector {
	return &Inspector{Backend: backend}
}

// Inspect classifies the checkout at path. It never modifies the checkout.
func (i *Inspector) Inspect(ctx context.Context, path string, spec repospec.Spec) Inspection {
	kind, why := ClassifyCheckout(path)
	result := Inspection{Path: path, Kind: kind}
	switch kind {
	case KindMissing:
		result.State = StateMissing
		return result
	case KindPlainDir, KindOrphaned:
		result.State = StateInvalid
		result.Detail = why
		return result
	}

	head, err := i.Backend.InspectHead(ctx, path)
	if err != nil {
		return broken(result, err)
	}
	result.Head = head.Commit
	if head.Symbolic {
		result.Branch = strings.TrimPrefix(head.Target, "refs/heads/")
	}
	if !head.Resolvable {
		if head.Empty {
			result.State = StateUninitialized
			result.Detail = "no commits"
			return result
		}
		result.State = StateBroken
		result.Detail = fmt.Sprintf("HEAD points at %s, which does not resolve to a commit", head.Target)
		return result
	}

	status, err := i.Backend.WorkingTreeStatus(ctx, path)
	if err != nil {
		return broken(result, err)
	}
	result.Dirty = DirtySummary{
		Staged:    status.Staged,
		Unstaged:  status.Unstaged,
		Untracked: status.Untracked,
		Unmerged:  status.Unmerged,
		Ahead:     status.Ahead,
		Behind:    status.Behind,
		Upstream:  status.Upstream,
	}

	if !head.Symbolic {
		result.State = StateDetachedUnpinned
		if spec.Pinned() {
			result.State = StateDetachedPinned
		}
		if status.Dirty {
			result.Detail = "modified"
		}
		return result
	}
	if status.Dirty {
		result.State = StateModified
		return result
	}
	result.State = StateClean
	return result
}

func broken(result Inspection, err error) Inspection {
	result.State = StateBroken
	result.Err = err
	switch {
	case errors.Is(err, gitcmd.ErrTimeout):
		result.Detail = "timed out"
	case errors.Is(err, gitcmd.ErrHeadUnreadable):
		result.Detail = "HEAD is unreadable"
	default:
		result.Detail = firstLine(err.Error())
	}
	return result
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}
