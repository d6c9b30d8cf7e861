package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/domain/workspace"
	"github.com/tasuku43/wsm/internal/ui"
)

const defaultWorkspace = "main"

func (a *app) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "init [branch]",
		Short:             "create the workspace for branch (default main)",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultWorkspace
			if len(args) == 1 {
				name = args[0]
			}
			a.renderer.Header("Initializing workspace: " + name)
			path, err := a.materialize(cmd, name)
			if err != nil {
				return err
			}
			a.renderer.Blank()
			a.renderer.Success("Workspace initialized: " + path)
			return nil
		},
	}
}

func (a *app) switchCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "switch [name]",
		Short:             "create or reuse a workspace and print its path",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultWorkspace
			if len(args) == 1 {
				name = args[0]
			}
			path, err := a.materialize(cmd, name)
			if err != nil {
				return err
			}
			a.renderer.Blank()
			a.renderer.Success("Switched to workspace: " + name)
			fmt.Fprintln(a.stdout, path)
			return nil
		},
	}
}

// materialize brings every configured repository of name into place and
// prints one outcome line per repository. It returns the workspace path.
func (a *app) materialize(cmd *cobra.Command, name string) (string, error) {
	ctx := cmd.Context()
	res, err := a.resolve(name)
	if err != nil {
		return "", err
	}
	if len(res.Specs) == 0 {
		a.renderer.Warn("no repositories configured; add some with `wsm config set`")
	} else {
		a.renderer.Log(fmt.Sprintf("using %s configuration (%s)", res.Layer, res.Source))
	}

	manager := workspace.NewManager(a.root, a.backend)
	manager.Jobs = a.jobs
	results, err := manager.Materialize(ctx, name, res.Specs)
	if err != nil {
		return "", err
	}
	a.renderMaterialize(results)
	if workspace.Failed(results) {
		failed := 0
		for _, result := range results {
			if result.Outcome == workspace.OutcomeFailed {
				failed++
			}
		}
		a.renderer.Blank()
		a.renderer.Error(fmt.Sprintf("%d of %d repositories failed", failed, len(results)))
		return "", exitError{code: 1}
	}
	return workspace.WorkspaceDir(a.root, name), nil
}

func (a *app) renderMaterialize(results []workspace.Result) {
	for _, result := range results {
		level := ui.LevelOK
		switch result.Outcome {
		case workspace.OutcomeSkippedExists:
			level = ui.LevelInfo
		case workspace.OutcomeRepaired:
			level = ui.LevelWarn
		case workspace.OutcomeFailed:
			level = ui.LevelError
		}
		detail := result.Detail
		if result.Outcome == workspace.OutcomeFailed && result.Err != nil && detail == "" {
			detail = result.Err.Error()
		}
		a.renderer.Outcome(result.Name, result.Outcome.String(), level, detail)
	}
}

// currentOrNamed returns args[0] when given, otherwise the workspace holding
// the working directory.
func (a *app) currentOrNamed(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	name, err := workspace.LocateCurrent(a.root, a.cwd)
	if errors.Is(err, workspace.ErrNotInWorkspace) {
		return "", errNotInWorkspace
	}
	return name, err
}

var errNotInWorkspace = errors.New("Not in workspace: run inside worktrees/<name> or pass a workspace name")

func (a *app) requireWorkspace(name string) error {
	exists, err := workspace.Exists(a.root, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("Workspace not found: %s", name)
	}
	return nil
}
