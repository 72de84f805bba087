package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cinder/internal/driver"
	"cinder/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [paths...]",
	Short: "Validate the structural invariants of IR files",
	Long: `Check parses each file and verifies list, edge and def-use invariants.
With no paths it falls back to the [check] section of cinder.toml`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "number of files checked in parallel (0 = one per CPU)")
	checkCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	wantUI, err := wantProgressUI(uiFlag)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	paths := args
	if len(paths) == 0 {
		manifest, ok, err := project.Load(".")
		if err != nil {
			return err
		}
		if !ok || len(manifest.Config.Check.Paths) == 0 {
			return fmt.Errorf("no paths given and no [check].paths in %s", project.ManifestName)
		}
		paths = manifest.CheckPaths()
		if jobs == 0 {
			jobs = manifest.Config.Check.Jobs
		}
	}

	files, err := driver.ExpandPaths(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .cir files in %v", paths)
	}

	var results []driver.Result
	if wantUI && len(files) > 1 {
		results, err = runCheckWithUI(cmd.Context(), "cinder check", files, jobs)
	} else {
		results, err = driver.CheckFiles(cmd.Context(), files, jobs, nil)
	}
	if err != nil {
		return err
	}

	failed := 0
	okColor := color.New(color.FgGreen)
	badColor := color.New(color.FgRed)
	if !useColor(cmd, os.Stdout) {
		okColor.DisableColor()
		badColor.DisableColor()
	}
	for _, res := range results {
		if res.Ok() {
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d funcs)\n", okColor.Sprint("ok"), res.Path, res.Funcs)
			}
			continue
		}
		failed++
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", badColor.Sprint("FAIL"), res.Path)
		fmt.Fprintln(os.Stderr, res.Err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// wantProgressUI decides whether check renders the live progress view.
// "auto" follows terminal detection, the same rule --color uses.
func wantProgressUI(flag string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(flag)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("--ui must be auto, on or off, got %q", flag)
}
