// Package syncer pulls the tracked branch of every repository of a
// workspace into its checkout.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/domain/workspace"
	"github.com/tasuku43/wsm/internal/infra/debuglog"
	"github.com/tasuku43/wsm/internal/infra/gitcmd"
	"github.com/tasuku43/wsm/internal/infra/paths"
	"github.com/tasuku43/wsm/internal/infra/workpool"
)

type Outcome int

const (
	OutcomeUpdated Outcome = iota
	OutcomeSkippedPinned
	OutcomeConflict
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeSkippedPinned:
		return "skipped-pinned"
	case OutcomeConflict:
		return "conflict"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Result struct {
	Name    string
	Path    string
	Outcome Outcome
	Detail  string
	Err     error
}

type Report struct {
	Workspace string
	Results   []Result
}

// ExitCode is 1 when any repository failed or conflicted.
func (r Report) ExitCode() int {
	for _, result := range r.Results {
		if result.Outcome == OutcomeFailed || result.Outcome == OutcomeConflict {
			return 1
		}
	}
	return 0
}

// Err joins the errors of failed and conflicted repositories.
func (r Report) Err() error {
	var errs []error
	for _, result := range r.Results {
		switch result.Outcome {
		case OutcomeFailed:
			errs = append(errs, fmt.Errorf("%s: %s", result.Name, result.Detail))
		case OutcomeConflict:
			errs = append(errs, fmt.Errorf("%s: merge conflict", result.Name))
		}
	}
	return errors.Join(errs...)
}

type Engine struct {
	Root      string
	Backend   workspace.Backend
	Inspector *workspace.Inspector
	Jobs      int

	locks workpool.KeyedMutex
}

func New(rootDir string, backend workspace.Backend) *Engine {
	return &Engine{
		Root:      rootDir,
		Backend:   backend,
		Inspector: workspace.NewInspector(backend),
		Jobs:      1,
	}
}

// Sync updates every head-tracking checkout of ws. Pinned repositories are
// reported and left alone. Results follow the order of specs.
func (e *Engine) Sync(ctx context.Context, ws string, specs []repospec.Spec) Report {
	results := workpool.Run(ctx, len(specs), e.Jobs, func(ctx context.Context, i int) Result {
		return e.syncOne(ctx, ws, specs[i])
	}, func(i int) Result {
		return Result{
			Name:    specs[i].DerivedName,
			Path:    workspace.CheckoutPath(e.Root, ws, specs[i].DerivedName),
			Outcome: OutcomeFailed,
			Detail:  "canceled before start",
			Err:     context.Canceled,
		}
	})
	return Report{Workspace: ws, Results: results}
}

func (e *Engine) syncOne(ctx context.Context, ws string, spec repospec.Spec) Result {
	path := workspace.CheckoutPath(e.Root, ws, spec.DerivedName)
	result := Result{Name: spec.DerivedName, Path: path}
	if spec.Pinned() {
		result.Outcome = OutcomeSkippedPinned
		result.Detail = "pinned at " + spec.PinnedRef
		return result
	}

	unlock := e.locks.Lock(spec.DerivedName)
	defer unlock()

	insp := e.Inspector.Inspect(ctx, path, spec)
	switch {
	case !insp.State.Valid():
		return fail(result, fmt.Errorf("checkout is %s", insp.State), insp.Detail)
	case insp.State == workspace.StateDetachedUnpinned:
		return fail(result, fmt.Errorf("HEAD is detached, expected branch %s", spec.Branch), "")
	case insp.Branch != spec.Branch:
		return fail(result, fmt.Errorf("checkout is on %s, expected %s", insp.Branch, spec.Branch), "")
	}

	central := workspace.CentralPath(e.Root, spec.DerivedName)
	if ok, err := paths.DirExists(central); err != nil || !ok {
		return fail(result, fmt.Errorf("central repository %s is missing", central), "")
	}

	if err := e.Backend.Fetch(ctx, central, spec.Branch); err != nil {
		if errors.Is(err, gitcmd.ErrRefNotFound) {
			result.Outcome = OutcomeUpdated
			result.Detail = "local branch, nothing to fetch"
			return result
		}
		return fail(result, err, "")
	}

	merge, err := e.Backend.MergeOrFastForward(ctx, path, spec.Branch)
	if err != nil {
		return fail(result, err, "")
	}
	debuglog.Event("", "sync merge", "repo", spec.DerivedName, "outcome", merge.String())
	switch merge {
	case gitcmd.MergeConflict:
		result.Outcome = OutcomeConflict
		result.Detail = "merge of origin/" + spec.Branch + " would conflict, local changes kept"
	case gitcmd.MergeUpToDate:
		result.Outcome = OutcomeUpdated
		result.Detail = "already up to date"
	default:
		result.Outcome = OutcomeUpdated
		result.Detail = merge.String() + " from origin/" + spec.Branch
	}
	return result
}

func fail(result Result, err error, detail string) Result {
	result.Outcome = OutcomeFailed
	result.Err = err
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	if detail != "" {
		msg += " (" + detail + ")"
	}
	result.Detail = msg
	return result
}
