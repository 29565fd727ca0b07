package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kassick/dotdot/internal/actions"
	"github.com/kassick/dotdot/internal/audit"
	"github.com/kassick/dotdot/internal/color"
	"github.com/kassick/dotdot/internal/dot"
	"github.com/kassick/dotdot/internal/logging"
	"github.com/kassick/dotdot/internal/runner"
)

var version = "dev"

var (
	dotsPath  string
	verbosity int
	dryRun    bool
)

func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "dotdot",
		Short: "A declarative dotfiles installer",
		Long: `dotdot installs your configuration files ("dots") into your home
directory from a directory of packages, each described by a small
spec.yaml action list: symlinks, copies, git clones, and shell commands.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&dotsPath, "dots-path", "d",
		defaultDotsPath(), "path where dot packages are stored")
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"print actions without executing them")

	root.AddCommand(
		listCmd(),
		showCmd(),
		installCmd(),
		actionsCmd(),
		logCmd(),
		versionCmd(),
	)
	return root
}

// defaultDotsPath honors DOTDOT_DOTS_PATH, falling back to ./dots.
func defaultDotsPath() string {
	if path := os.Getenv("DOTDOT_DOTS_PATH"); path != "" {
		return path
	}
	return "dots"
}

// --- list --------------------------------------------------------------------

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the dots available under the dots path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fi, err := os.Stat(dotsPath); err != nil || !fi.IsDir() {
				return fmt.Errorf("invalid dots path %q", dotsPath)
			}

			pkgs, scanErrs := dot.Scan(dotsPath)

			if len(scanErrs) > 0 {
				fmt.Println(color.Yellow("Warning: errors found on the following dots:"))
				for _, se := range scanErrs {
					fmt.Printf("- %s: %v\n", se.Name, se.Err)
				}
				fmt.Println()
			}

			fmt.Println("Available dots:")
			for _, pkg := range pkgs {
				desc := ""
				if pkg.Description != "" && pkg.Description != pkg.Name {
					desc = ": " + pkg.Description
				}
				fmt.Printf("- %s%s\n", color.Bold(pkg.Name), desc)
			}
			return nil
		},
	}
}

// --- show --------------------------------------------------------------------

func showCmd() *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "show <dot>",
		Short: "Show a dot's description, variants, and materialized actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := dot.FromPath(filepath.Join(dotsPath, args[0]), variant)
			if err != nil {
				return fmt.Errorf("could not load dot %q: %w", args[0], err)
			}

			fmt.Println("Dot:", color.Bold(pkg.Name))
			if pkg.Description != "" {
				fmt.Println("Description:", pkg.Description)
			}

			selected := variant
			if selected == "" {
				selected = dot.DefaultVariant
			}
			names := make([]string, 0, len(pkg.Variants))
			for _, v := range pkg.Variants {
				if v == selected {
					v = "*" + v
				}
				names = append(names, v)
			}
			fmt.Println("Variants:", strings.Join(names, ", "))

			fmt.Println("Actions:")
			for _, declared := range pkg.Actions {
				action, err := declared.Materialize()
				if err != nil {
					return err
				}
				fmt.Printf("- %s\n", action.Describe())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&variant, "variant", "V", "", "variant to select")
	return cmd
}

// --- install -----------------------------------------------------------------

func installCmd() *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "install <dot>...",
		Short: "Install one or more dots",
		Example: `  dotdot install vim
  dotdot install vim zsh --dry-run
  dotdot install work-ssh -V laptop`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load every requested package first so a parse error aborts the
			// whole run before anything is touched.
			pkgs := make([]*dot.Package, 0, len(args))
			for _, name := range args {
				pkg, err := dot.FromPath(filepath.Join(dotsPath, name), variant)
				if err != nil {
					return fmt.Errorf("could not load dot %q: %w", name, err)
				}
				pkgs = append(pkgs, pkg)
			}

			r := runner.New(dryRun)
			return r.InstallAll(context.Background(), pkgs)
		},
	}
	cmd.Flags().StringVarP(&variant, "variant", "V", "", "variant to select")
	return cmd
}

// --- actions -----------------------------------------------------------------

func actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions [name]",
		Short: "List available action types, or show one action's help",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println("Available actions:")
				for _, name := range actions.Names() {
					summary := strings.SplitN(actions.Help(name), "\n", 2)[0]
					fmt.Printf("- %s: %s\n", color.Bold(name), summary)
				}
				return nil
			}

			help := actions.Help(args[0])
			if help == "" {
				return fmt.Errorf("no such action %q", args[0])
			}
			fmt.Printf("Action %s\n%s\n", color.Bold(args[0]), help)
			return nil
		},
	}
}

// --- log ---------------------------------------------------------------------

func logCmd() *cobra.Command {
	var packageFilter string
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the audit log of executed actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := audit.Read(packageFilter, limit)
			if err != nil {
				return fmt.Errorf("read audit log: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("(no log entries)")
				return nil
			}

			fmt.Println(color.Bold(fmt.Sprintf("%-20s  %-20s  %-8s  %s",
				"TIME", "PACKAGE", "OUTCOME", "ACTION")))
			for _, e := range entries {
				outcome := fmt.Sprintf("%-8s", e.Outcome)
				switch e.Outcome {
				case "success":
					outcome = color.Green(outcome)
				case "failure":
					outcome = color.BoldRed(outcome)
				default:
					outcome = color.Dim(outcome)
				}
				fmt.Printf("%-20s  %-20s  %s  %s\n",
					e.Time.Local().Format(time.DateTime), e.Package, outcome, e.Action)
				if e.Error != "" {
					fmt.Printf("%-20s  %-20s  %s\n", "", "", color.Dim(e.Error))
				}
			}
			fmt.Printf("\nlog: %s\n", audit.LogPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&packageFilter, "package", "", "filter log by package name")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries to show")
	return cmd
}

// --- version -----------------------------------------------------------------

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dotdot version %s\n", version)
		},
	}
}
