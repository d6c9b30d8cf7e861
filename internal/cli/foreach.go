package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/app/foreach"
)

func (a *app) foreachCommand() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "foreach [-q] <command...>",
		Short: "run a shell command in each checkout",
		Long: "The command runs with sh -c inside every checkout of the current workspace.\n" +
			"$name and $path hold the repository name and its path within the workspace.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.currentOrNamed(nil)
			if err != nil {
				return err
			}
			res, err := a.resolve(name)
			if err != nil {
				return err
			}
			summary, err := foreach.Run(cmd.Context(),
				foreach.Target{Root: a.root, Workspace: name},
				res.Specs, args,
				foreach.Options{Quiet: quiet, Stdout: a.stdout, Stderr: a.stderr},
			)
			if err != nil {
				return err
			}
			if code := summary.ExitCode(); code != 0 {
				if !quiet {
					fmt.Fprintf(a.stderr, "foreach: %d failed, %d missing of %d repositories\n",
						len(summary.Failed), len(summary.Missing), len(res.Specs))
				}
				return exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "omit the per-repository headers")
	return cmd
}
