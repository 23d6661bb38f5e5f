package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/buger/goterm"
	"github.com/spf13/cobra"

	"dotsync/internal/app"
	"dotsync/internal/config"
	"dotsync/internal/sync"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "dotsync",
	Short:         "Back up tracked files to a git mirror",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// progressPrinter renders one line per completed copy.
func progressPrinter(verb string) sync.ProgressFunc {
	return func(done, total int, name string) {
		fmt.Printf("[%d/%d] %s %s\n", done, total, verb, name)
	}
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy changed tracked files into the mirror, commit and push",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		a, err := app.New("backup")
		if err != nil {
			return err
		}
		defer a.Close()
		a.SetProgress(progressPrinter("backing up"))

		result, err := a.Backup(dryRun)
		if err != nil {
			return err
		}

		switch {
		case result.NoChanges:
			fmt.Println("All files are up to date, no backup needed.")
		case result.DryRun:
			fmt.Printf("Would back up %d file(s):\n", len(result.Copied))
			for _, p := range result.Copied {
				fmt.Printf("  %s\n", p)
			}
		default:
			for _, p := range result.Skipped {
				fmt.Println(goterm.Color("skipped (missing): "+p, goterm.YELLOW))
			}
			if result.CommitHash == "" {
				fmt.Printf("Backed up %d file(s); mirror already matched, nothing committed.\n", len(result.Copied))
			} else {
				fmt.Printf("Backed up %d file(s), commit %.12s pushed.\n", len(result.Copied), result.CommitHash)
			}
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Fetch the mirror and copy changed files back to their live locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if !force && !confirm("This may overwrite local files with their mirror copies. Continue? [y/N] ") {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := app.New("restore")
		if err != nil {
			return err
		}
		defer a.Close()
		a.SetProgress(progressPrinter("restoring"))

		result, err := a.Restore()
		if err != nil {
			return err
		}

		for _, p := range result.Skipped {
			fmt.Println(goterm.Color("no mirror copy: "+p, goterm.YELLOW))
		}
		if result.NoChanges {
			fmt.Println("All files are up to date, no restore needed.")
		} else {
			fmt.Printf("Restored %d file(s).\n", len(result.Copied))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"list"},
	Short:   "Report mirror and per-file sync state without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New("status")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Status()
		if err != nil {
			return err
		}

		fmt.Printf("Mirror directory: %s\n", report.MirrorDir)
		if report.MirrorExists {
			fmt.Println(goterm.Color("  exists", goterm.GREEN))
		} else {
			fmt.Println(goterm.Color("  does not exist", goterm.RED))
		}

		fmt.Printf("Remote URL: %s\n", report.RemoteURL)
		if report.Repo.Exists {
			fmt.Printf("Current branch: %s\n", report.Repo.Branch)
			fmt.Printf("Modified files: %d\n", report.Repo.Modified)
			fmt.Printf("Untracked files: %d\n", report.Repo.Untracked)
		} else {
			fmt.Println(goterm.Color("Repository not initialized", goterm.RED))
		}

		fmt.Println("\nTracked files:")
		for _, e := range report.Entries {
			fmt.Printf("  %s: %s\n", e.LivePath, colorState(e.State))
		}
		return nil
	},
}

func colorState(s sync.EntryState) string {
	switch s {
	case sync.StateSynced:
		return goterm.Color(s.String(), goterm.GREEN)
	case sync.StateLocalNewer:
		return goterm.Color(s.String(), goterm.YELLOW)
	default:
		return goterm.Color(s.String(), goterm.RED)
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded backup and restore runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := app.New("history")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			commit := r.CommitHash
			if len(commit) > 12 {
				commit = commit[:12]
			}
			fmt.Printf("%.8s  %-7s  %s  %-7s  %d file(s)  %s\n",
				r.ID,
				r.Operation,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				r.FilesCopied,
				commit,
			)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.SearchPaths()[0]

		cfg := &config.Config{
			Files: config.FilesConfig{
				Folder: "~/.dotsync-mirror",
				Paths:  []string{"~/.vimrc"},
			},
			Git: config.GitConfig{
				RemoteURL: "git@example.com:user/dotfiles.git",
				Branch:    config.DefaultBranch,
			},
		}

		if err := config.Init(path, cfg); err != nil {
			return err
		}

		fmt.Printf("Configuration written to %s\n", path)
		fmt.Println("Edit git.remote_url and files.paths before the first backup.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Mirror folder: %s\n", cfg.Files.Folder)
		fmt.Printf("Remote URL:    %s\n", cfg.Git.RemoteURL)
		fmt.Printf("Branch:        %s\n", cfg.Git.Branch)
		fmt.Println("Tracked paths:")
		for _, p := range cfg.Files.Paths {
			fmt.Printf("  %s\n", p)
		}
		return nil
	},
}

// confirm prompts on stdout and reads a single line from stdin.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	backupCmd.Flags().Bool("dry-run", false, "Report what would be copied without changing anything")
	restoreCmd.Flags().BoolP("force", "f", false, "Skip the confirmation prompt")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}
