package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/app/syncer"
	"github.com/tasuku43/wsm/internal/infra/output"
	"github.com/tasuku43/wsm/internal/ui"
)

func (a *app) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "sync [name]",
		Short:             "fetch and merge origin into each tracking checkout",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.currentOrNamed(args)
			if err != nil {
				return err
			}
			if err := a.requireWorkspace(name); err != nil {
				return err
			}
			res, err := a.resolve(name)
			if err != nil {
				return err
			}

			a.renderer.Header("Syncing workspace: " + name)
			engine := syncer.New(a.root, a.backend)
			engine.Jobs = a.jobs
			report := engine.Sync(cmd.Context(), name, res.Specs)
			a.renderSync(report)

			if code := report.ExitCode(); code != 0 {
				a.renderer.Blank()
				a.renderer.Error(fmt.Sprintf("sync finished with problems in %d of %d repositories", countProblems(report), len(report.Results)))
				return exitError{code: code}
			}
			a.renderer.Blank()
			a.renderer.Success("Workspace synced: " + name)
			return nil
		},
	}
}

func (a *app) renderSync(report syncer.Report) {
	for _, result := range report.Results {
		if result.Outcome == syncer.OutcomeSkippedPinned {
			output.Step(result.Name + " is pinned, skipping")
			if result.Detail != "" {
				a.renderer.Log(result.Detail)
			}
			continue
		}
		output.Step("Updating " + result.Name)
		label := result.Outcome.String()
		if result.Detail != "" {
			label += ": " + result.Detail
		}
		switch result.Outcome {
		case syncer.OutcomeUpdated:
			a.renderer.Log(label)
		case syncer.OutcomeConflict:
			a.renderer.LogLevel(label, ui.LevelWarn)
		default:
			a.renderer.LogLevel(label, ui.LevelError)
		}
	}
}

func countProblems(report syncer.Report) int {
	n := 0
	for _, result := range report.Results {
		if result.Outcome == syncer.OutcomeFailed || result.Outcome == syncer.OutcomeConflict {
			n++
		}
	}
	return n
}
