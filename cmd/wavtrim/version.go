package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build variables, set with -ldflags "-X main.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()

			if short, _ := cmd.Flags().GetBool("short"); short {
				fmt.Fprintf(out, "v%s\n", Version)
				return
			}

			fmt.Fprintf(out, "wavtrim v%s (%s) %s %s/%s\n", Version, GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolP("short", "s", false, "print just the version number")

	return cmd
}
