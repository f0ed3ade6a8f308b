package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "capturectl",
		Short:        "Offline tools for the motion capture server",
		SilenceUsage: true,
	}
	root.AddCommand(NewReplayCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
