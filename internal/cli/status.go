package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/domain/config"
	"github.com/tasuku43/wsm/internal/domain/workspace"
	"github.com/tasuku43/wsm/internal/ui"
)

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "status [name]",
		Short:             "show the state of every checkout",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []string
			if len(args) == 1 {
				if err := a.requireWorkspace(args[0]); err != nil {
					return err
				}
				names = []string{args[0]}
			} else {
				entries, warnings, err := workspace.List(a.root)
				if err != nil {
					return err
				}
				a.warnAll(warnings)
				for _, entry := range entries {
					names = append(names, entry.Name)
				}
			}

			a.renderer.Header("Workspace Status")
			if len(names) == 0 {
				a.renderer.Blank()
				a.renderer.Bullet("No workspaces found")
				return nil
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			manager := workspace.NewManager(a.root, a.backend)
			for _, name := range names {
				a.renderer.Blank()
				a.renderer.Section(name)
				a.renderStatus(cmd, manager, cfg.Resolve(name))
			}
			return nil
		},
	}
}

func (a *app) renderStatus(cmd *cobra.Command, manager *workspace.Manager, res config.Resolution) {
	if len(res.Specs) == 0 {
		a.renderer.Log("no repositories configured")
	}
	known := map[string]bool{}
	for _, spec := range res.Specs {
		known[spec.DerivedName] = true
		insp := manager.Inspect(cmd.Context(), res.Workspace, spec)
		a.renderer.Outcome(spec.DerivedName, insp.State.Tag(), stateLevel(insp.State), inspectionDetail(insp))
	}

	entries, err := os.ReadDir(workspace.WorkspaceDir(a.root, res.Workspace))
	if err != nil {
		return
	}
	for _, entry := range entries {
		if known[entry.Name()] || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		a.renderer.Outcome(entry.Name(), "[unmanaged]", ui.LevelWarn, "not in configuration")
	}
}

func stateLevel(state workspace.State) ui.Level {
	switch state {
	case workspace.StateClean:
		return ui.LevelOK
	case workspace.StateModified, workspace.StateDetachedUnpinned:
		return ui.LevelWarn
	case workspace.StateDetachedPinned:
		return ui.LevelInfo
	default:
		return ui.LevelError
	}
}

func inspectionDetail(insp workspace.Inspection) string {
	var parts []string
	switch {
	case insp.Branch != "":
		parts = append(parts, insp.Branch)
	case insp.Head != "":
		parts = append(parts, "at "+insp.Head)
	}
	if insp.Kind == workspace.KindStandaloneClone {
		parts = append(parts, "standalone repository, run repair to convert it")
	}
	d := insp.Dirty
	for _, count := range []struct {
		n     int
		label string
	}{
		{d.Staged, "staged"},
		{d.Unstaged, "unstaged"},
		{d.Untracked, "untracked"},
		{d.Unmerged, "unmerged"},
		{d.Ahead, "ahead"},
		{d.Behind, "behind"},
	} {
		if count.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count.n, count.label))
		}
	}
	if insp.Detail != "" {
		parts = append(parts, insp.Detail)
	}
	return strings.Join(parts, ", ")
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, warnings, err := workspace.List(a.root)
			if err != nil {
				return err
			}
			a.warnAll(warnings)
			a.renderer.Header("Available Workspaces")
			if len(entries) == 0 {
				a.renderer.Blank()
				a.renderer.Bullet("No workspaces found")
				return nil
			}
			current, _ := workspace.LocateCurrent(a.root, a.cwd)
			for _, entry := range entries {
				label := entry.Name
				if entry.Name == current {
					label += " (current)"
				}
				a.renderer.Bullet(label)
				info := fmt.Sprintf("%d repositories", entry.Repos)
				if !entry.Metadata.CreatedAt.IsZero() {
					info += ", created " + entry.Metadata.CreatedAt.Local().Format("2006-01-02 15:04")
				}
				a.renderer.Log(info)
			}
			return nil
		},
	}
}

func (a *app) warnAll(errs []error) {
	for _, err := range errs {
		a.renderer.Warn(err.Error())
	}
}
