package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, set with -ldflags at release time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "development"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "sclc version %s\n", Version)
			fmt.Fprintf(w, "  git commit: %s\n", GitCommit)
			fmt.Fprintf(w, "  build date: %s\n", BuildDate)
			fmt.Fprintf(w, "  go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "  os/arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
