package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/domain/config"
	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/domain/workspace"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <subcommand>",
		Short: "show or edit repository configuration",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printConfigHelp(a.stdout)
			if len(args) == 0 {
				return errors.New("config requires a subcommand")
			}
			return fmt.Errorf("Unknown config subcommand: %s", args[0])
		},
	}
	cmd.AddCommand(
		a.configShowCommand(),
		a.configSetCommand(),
		a.configSetDefaultCommand(),
		a.configUnsetCommand(),
		a.configUnsetDefaultCommand(),
		a.configImportCommand(),
		&cobra.Command{
			Use:   "help",
			Short: "show this help",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				printConfigHelp(a.stdout)
			},
		},
	)
	return cmd
}

func usageArgs(lo, hi int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			return fmt.Errorf("usage: wsm config %s", usage)
		}
		return nil
	}
}

func (a *app) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show [workspace]",
		Short:             "print every layer and the one in effect",
		Args:              usageArgs(0, 1, "show [workspace]"),
		ValidArgsFunction: a.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultWorkspace
			if len(args) == 1 {
				name = args[0]
			} else if current, err := a.currentOrNamed(nil); err == nil {
				name = current
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			res := cfg.Resolve(name)

			a.renderer.Header("Configuration for workspace: " + name)
			if res.Layer == config.LayerNone {
				a.renderer.Log("no repositories configured")
			} else {
				a.renderer.Log(fmt.Sprintf("in effect: %s (%s)", res.Layer, res.Source))
			}
			layers := cfg.Layers(name)
			headings := []string{
				"Workspace-specific repositories:",
				"Default repositories (inherited):",
				fmt.Sprintf("Legacy configuration (from %s):", filepath.Base(cfg.Paths.Legacy)),
			}
			for i, recs := range layers {
				a.renderer.Blank()
				heading := headings[i]
				if recs.Layer == res.Layer && res.Layer != config.LayerNone {
					heading += " (active)"
				}
				a.renderer.Section(heading)
				a.renderRecords(recs)
			}
			return nil
		},
	}
}

func (a *app) renderRecords(recs config.Records) {
	if !recs.HasEntries() {
		a.renderer.Log("(none)")
		return
	}
	for _, line := range recs.Lines {
		a.renderer.Bullet(line.String())
	}
	for _, diag := range recs.Errors {
		a.renderer.Warn("malformed: " + diag.Error())
	}
}

func (a *app) configSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "set <workspace> <url> [branch [ref]]",
		Short:             "add or replace a workspace record",
		Args:              usageArgs(2, 4, "set <workspace> <url> [branch [ref]]"),
		ValidArgsFunction: a.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := workspace.ValidateName(cmd.Context(), name); err != nil {
				return err
			}
			line, err := lineFromArgs(args[1:])
			if err != nil {
				return err
			}
			if err := config.SetWorkspace(a.configPaths(), name, line); err != nil {
				return err
			}
			a.renderer.Success(fmt.Sprintf("Set repository config for %s: %s", name, line))
			return nil
		},
	}
}

func (a *app) configSetDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <url> [branch [ref]]",
		Short: "add or replace a default record",
		Args:  usageArgs(1, 3, "set-default <url> [branch [ref]]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := lineFromArgs(args)
			if err != nil {
				return err
			}
			if err := config.SetDefault(a.configPaths(), line); err != nil {
				return err
			}
			a.renderer.Success("Set default repository config: " + line.String())
			return nil
		},
	}
}

func lineFromArgs(args []string) (repospec.Line, error) {
	var url, branch, ref string
	url = args[0]
	if len(args) > 1 {
		branch = args[1]
	}
	if len(args) > 2 {
		ref = args[2]
	}
	line, _, err := repospec.NewLine(url, branch, ref)
	if err != nil {
		return repospec.Line{}, fmt.Errorf("invalid repository record: %w", err)
	}
	return line, nil
}

func (a *app) configUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "unset <workspace> <name>",
		Short:             "remove a workspace record",
		Args:              usageArgs(2, 2, "unset <workspace> <name>"),
		ValidArgsFunction: a.completeWorkspaceThenRepo,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.UnsetWorkspace(a.configPaths(), args[0], args[1])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("repository %s not found in the configuration of workspace %s", args[1], args[0])
			}
			a.renderer.Success(fmt.Sprintf("Removed repository config for %s: %s", args[0], args[1]))
			return nil
		},
	}
}

func (a *app) configUnsetDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset-default <name>",
		Short: "remove a default record",
		Args:  usageArgs(1, 1, "unset-default <name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.UnsetDefault(a.configPaths(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("repository %s not found in the default configuration", args[0])
			}
			a.renderer.Success("Removed default repository config: " + args[0])
			return nil
		},
	}
}

func (a *app) configImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "import <workspace> [file]",
		Short:             "copy a workspace.conf file into a workspace",
		Args:              usageArgs(1, 2, "import <workspace> [file]"),
		ValidArgsFunction: a.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := workspace.ValidateName(cmd.Context(), name); err != nil {
				return err
			}
			file := a.legacy
			if len(args) == 2 {
				file = args[1]
			}
			a.renderer.Header(fmt.Sprintf("Importing configuration from %s into workspace %s", file, name))
			report, err := config.Import(a.configPaths(), name, file)
			if err != nil {
				return err
			}
			for _, line := range report.Imported {
				a.renderer.Bullet(line.String())
			}
			for _, diag := range report.Skipped {
				a.renderer.Warn("skipped: " + diag.Error())
			}
			a.renderer.Blank()
			a.renderer.Success(fmt.Sprintf("Import complete: %d repositories written to %s",
				len(report.Imported), a.configPaths().Workspace(name)))
			return nil
		},
	}
}
