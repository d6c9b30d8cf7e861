package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tasuku43/wsm/internal/ui"
)

type helpEntry struct {
	name        string
	description string
}

var globalCommands = []helpEntry{
	{"init [branch]", "create the workspace for branch (default main)"},
	{"switch [name]", "create or reuse a workspace and print its path"},
	{"sync [name]", "fetch and merge origin into each tracking checkout"},
	{"status [name]", "show the state of every checkout"},
	{"foreach [-q] <command...>", "run a shell command in each checkout"},
	{"list", "list workspaces"},
	{"clean <name>", "remove a workspace and its checkouts"},
	{"config <subcommand>", "show or edit repository configuration"},
	{"repair <workspace> <repo>", "rebuild one broken checkout"},
	{"completion <shell>", "print a shell completion script"},
	{"version", "print wsm version"},
	{"help [command]", "show help for a command"},
}

var configCommands = []helpEntry{
	{"show [workspace]", "print every layer and the one in effect"},
	{"set <workspace> <url> [branch [ref]]", "add or replace a workspace record"},
	{"set-default <url> [branch [ref]]", "add or replace a default record"},
	{"unset <workspace> <name>", "remove a workspace record"},
	{"unset-default <name>", "remove a default record"},
	{"import <workspace> [file]", "copy a workspace.conf file into a workspace"},
	{"help", "show this help"},
}

func (a *app) help(cmd *cobra.Command, _ []string) {
	w := cmd.OutOrStdout()
	switch {
	case !cmd.HasParent():
		printGlobalHelp(w)
	case cmd.Name() == "config":
		printConfigHelp(w)
	default:
		printCommandHelp(cmd, w)
	}
}

func printGlobalHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Workspace Manager"))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: wsm <command> [flags] [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Commands:"))
	for _, entry := range globalCommands {
		fmt.Fprintln(w, helpCommand(theme, useColor, entry.name, entry.description))
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Global flags:"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--root <path>", "workspace root"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--config <file>", "legacy workspace.conf file"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--jobs, -j <n>", "repositories processed in parallel"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--timeout <dur>", "git command timeout (default 10m)"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--no-prompt", "never ask for confirmation"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--verbose, -v", "echo git commands"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--debug", "write debug logs to file"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--help, -h", "show help"))
}

func printConfigHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: wsm config <subcommand> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Subcommands:"))
	for _, entry := range configCommands {
		fmt.Fprintln(w, helpCommand(theme, useColor, entry.name, entry.description))
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Records have the form URL [BRANCH [REF]]. Use - as BRANCH to pin a ref")
	fmt.Fprintln(w, "without naming a branch.")
}

func printCommandHelp(cmd *cobra.Command, w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintf(w, "Usage: %s\n", cmd.UseLine())
	if cmd.Short != "" {
		fmt.Fprintf(w, "  %s\n", cmd.Short)
	}
	if cmd.Long != "" {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, strings.TrimRight(cmd.Long, "\n"))
	}
	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Flags:"))
		cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
			if f.Hidden || f.Name == "help" {
				return
			}
			fmt.Fprintln(w, helpFlag(theme, useColor, flagLabel(f), f.Usage))
		})
	}
}

func flagLabel(f *pflag.Flag) string {
	label := "--" + f.Name
	if f.Shorthand != "" {
		label += ", -" + f.Shorthand
	}
	return label
}

func helpTheme(w io.Writer) (ui.Theme, bool) {
	theme := ui.DefaultTheme()
	if file, ok := w.(*os.File); ok {
		return theme, isatty.IsTerminal(file.Fd())
	}
	return theme, false
}

func helpSectionTitle(theme ui.Theme, useColor bool, title string) string {
	if !useColor {
		return title
	}
	return theme.SectionTitle.Render(title)
}

func helpCommand(theme ui.Theme, useColor bool, name, description string) string {
	if useColor {
		return fmt.Sprintf("  %s  %s", theme.Accent.Render(name), description)
	}
	return fmt.Sprintf("  %-38s %s", name, description)
}

func helpFlag(theme ui.Theme, useColor bool, flag, description string) string {
	if useColor {
		return fmt.Sprintf("  %s  %s", theme.Accent.Render(flag), description)
	}
	return fmt.Sprintf("  %-18s %s", flag, description)
}
