package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/domain/workspace"
	"github.com/tasuku43/wsm/internal/ui"
)

func (a *app) cleanCommand() *cobra.Command {
	var yes, force bool
	cmd := &cobra.Command{
		Use:   "clean <name>",
		Short: "remove a workspace and its checkouts",
		Long: "Linked checkouts are removed and central repositories are kept.\n" +
			"Checkouts with local changes and entries that are not linked checkouts\n" +
			"block the removal unless --force is given; such entries are moved to\n" +
			".wsm/trash instead of being deleted.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("Workspace name required: wsm clean <name>")
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		ValidArgsFunction: a.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := a.requireWorkspace(name); err != nil {
				return err
			}
			if !yes {
				if a.noPrompt {
					return errors.New("refusing to delete without confirmation; pass --yes")
				}
				ok, err := a.prompter().Confirm(fmt.Sprintf("Delete workspace: %s?", name))
				if err != nil {
					return err
				}
				if !ok {
					a.renderer.Bullet("Aborted, nothing removed")
					return nil
				}
			}

			manager := workspace.NewManager(a.root, a.backend)
			report, err := manager.Clean(cmd.Context(), name, workspace.CleanOptions{Force: force})
			for _, entry := range report.Removed {
				a.renderer.Outcome(entry, "removed", ui.LevelOK, "")
			}
			for _, entry := range report.Trashed {
				a.renderer.Outcome(entry, "moved to trash", ui.LevelWarn, "")
			}
			if errors.Is(err, workspace.ErrCleanBlocked) {
				a.renderer.Error("Workspace not removed:")
				for _, blocked := range report.Blocked {
					a.renderer.Log(blocked)
				}
				a.renderer.Log("commit or discard the changes, or pass --force")
				return exitError{code: 1}
			}
			if err != nil {
				return err
			}
			a.renderer.Blank()
			a.renderer.Success("Workspace removed: " + name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "remove dirty checkouts and unmanaged entries")
	return cmd
}
