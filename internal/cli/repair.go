package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/domain/workspace"
	"github.com/tasuku43/wsm/internal/ui"
)

func (a *app) repairCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "repair <workspace> <repo>",
		Short: "rebuild one broken checkout",
		Long: "The checkout is inspected and rebuilt from its central repository when it\n" +
			"is missing, invalid, broken or uninitialized. The previous directory is\n" +
			"moved to .wsm/trash. A standalone clone is converted into a linked checkout\n" +
			"after confirmation.",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: a.completeWorkspaceThenRepo,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, repo := args[0], args[1]
			if err := a.requireWorkspace(name); err != nil {
				return err
			}
			res, err := a.resolve(name)
			if err != nil {
				return err
			}
			spec, ok := res.Lookup(repo)
			if !ok {
				return fmt.Errorf("repository %s not found in the configuration of workspace %s", repo, name)
			}

			a.renderer.Header(fmt.Sprintf("Attempting to repair %s in workspace %s", repo, name))
			manager := workspace.NewManager(a.root, a.backend)
			insp := manager.Inspect(cmd.Context(), name, spec)
			a.renderer.Log(fmt.Sprintf("current state: %s", insp.State.Tag()))

			if insp.Kind == workspace.KindStandaloneClone {
				a.renderer.Warn(fmt.Sprintf("%s is a standalone repository, not a linked checkout", repo))
				if !yes {
					if a.noPrompt {
						return fmt.Errorf("refusing to convert %s without confirmation; pass --yes", repo)
					}
					ok, err := a.prompter().Confirm("Move it to the trash and recreate it as a linked checkout?")
					if err != nil {
						return err
					}
					if !ok {
						a.renderer.Bullet("Left unchanged")
						return nil
					}
				}
			}

			result := manager.Repair(cmd.Context(), name, spec)
			level := ui.LevelOK
			switch result.Outcome {
			case workspace.OutcomeSkippedExists:
				level = ui.LevelInfo
			case workspace.OutcomeFailed:
				level = ui.LevelError
			}
			detail := result.Detail
			if detail == "" && result.Err != nil {
				detail = result.Err.Error()
			}
			a.renderer.Outcome(result.Name, result.Outcome.String(), level, detail)
			if result.Outcome == workspace.OutcomeFailed {
				return exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "convert standalone clones without asking")
	return cmd
}
