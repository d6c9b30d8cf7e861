// Package gitrepo reads standalone clones in-process with go-git.
package gitrepo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v6"
)

// Probe is what repair needs to know about a standalone clone before it is
// moved aside.
type Probe struct {
	OriginURL string
	Branch    string
	Head      string
	Clean     bool
}

// ProbeStandalone opens the repository at path. A missing origin or an
// unborn HEAD leaves the corresponding fields empty.
func ProbeStandalone(path string) (Probe, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Probe{}, fmt.Errorf("directory is not a git repository: %s", path)
		}
		return Probe{}, fmt.Errorf("open repository %s: %w", path, err)
	}

	var probe Probe
	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			probe.OriginURL = cfg.URLs[0]
		}
	} else if !errors.Is(err, git.ErrRemoteNotFound) {
		return Probe{}, fmt.Errorf("read origin of %s: %w", path, err)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			probe.Branch = head.Name().Short()
		}
		probe.Head = head.Hash().String()[:7]
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return Probe{}, fmt.Errorf("open working tree of %s: %w", path, err)
	}
	status, err := worktree.Status()
	if err != nil {
		return Probe{}, fmt.Errorf("status of %s: %w", path, err)
	}
	probe.Clean = status.IsClean()
	return probe, nil
}
