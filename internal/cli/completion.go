package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/domain/config"
	"github.com/tasuku43/wsm/internal/domain/workspace"
	"github.com/tasuku43/wsm/internal/infra/paths"
)

func (a *app) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "completion <bash|zsh|fish|powershell>",
		Short:     "print a shell completion script",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(a.stdout, true)
			case "zsh":
				return root.GenZshCompletion(a.stdout)
			case "fish":
				return root.GenFishCompletion(a.stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(a.stdout)
			}
			return fmt.Errorf("unsupported shell: %s", args[0])
		},
	}
}

// completionRoot resolves the root again because completion requests parse
// the target command's flags after the persistent setup already ran.
func (a *app) completionRoot() (string, string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", false
	}
	root, err := paths.ResolveRoot(a.rootFlag, cwd)
	if err != nil {
		return "", "", false
	}
	legacy, err := paths.ResolveLegacyConfig(a.configFlag, root)
	if err != nil {
		return "", "", false
	}
	return root, legacy, true
}

// workspaceNames merges workspaces on disk with workspaces that only exist
// in configuration.
func (a *app) workspaceNames() []string {
	root, legacy, ok := a.completionRoot()
	if !ok {
		return nil
	}
	var names []string
	entries, _, _ := workspace.List(root)
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	if cfg, err := config.Load(config.PathsFor(root, legacy)); err == nil {
		names = append(names, cfg.WorkspaceNames()...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func (a *app) repoNames(ws string) []string {
	root, legacy, ok := a.completionRoot()
	if !ok {
		return nil
	}
	cfg, err := config.Load(config.PathsFor(root, legacy))
	if err != nil {
		return nil
	}
	var names []string
	for _, spec := range cfg.Resolve(ws).Specs {
		names = append(names, spec.DerivedName)
	}
	return names
}

func (a *app) completeWorkspaces(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return withPrefix(a.workspaceNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (a *app) completeWorkspaceThenRepo(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return withPrefix(a.workspaceNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
	case 1:
		return withPrefix(a.repoNames(args[0]), toComplete), cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

func withPrefix(values []string, prefix string) []string {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}
