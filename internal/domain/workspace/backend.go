package workspace

import (
	"context"

	"github.com/tasuku43/wsm/internal/infra/gitcmd"
)

// Backend is the version-control collaborator. *gitcmd.Backend implements
// it; tests substitute fakes.
type Backend interface {
	Clone(ctx context.Context, url, centralPath string) error
	AddCheckout(ctx context.Context, centralPath, path, ref string, detached bool) error
	BranchExists(ctx context.Context, centralPath, branch string) (bool, error)
	CreateBranch(ctx context.Context, centralPath, branch string) (string, error)
	RemoveCheckout(ctx context.Context, centralPath, path string, force bool) error
	PruneCheckouts(ctx context.Context, centralPath string) error
	Fetch(ctx context.Context, centralPath, branch string) error
	MergeOrFastForward(ctx context.Context, checkoutPath, branch string) (gitcmd.MergeOutcome, error)
	InspectHead(ctx context.Context, checkoutPath string) (gitcmd.HeadInfo, error)
	WorkingTreeStatus(ctx context.Context, checkoutPath string) (gitcmd.TreeStatus, error)
	OriginURL(ctx context.Context, repoPath string) (string, error)
}

var _ Backend = (*gitcmd.Backend)(nil)
