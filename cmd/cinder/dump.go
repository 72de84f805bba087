package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cinder/internal/driver"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] file.cir...",
	Short: "Print the control-flow listing of IR files",
	Long:  `Dump parses each file and prints every function as a block-by-block listing`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	files, err := driver.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .cir files in %v", args)
	}
	for k, file := range files {
		if k > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := driver.DumpFile(cmd.OutOrStdout(), file); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return fmt.Errorf("dump failed for %s", file)
		}
	}
	return nil
}
