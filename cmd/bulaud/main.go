package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/susankaotw/bulau/internal/cli"
	"github.com/susankaotw/bulau/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bulaud",
		Short: "Bulau daemon",
		Long:  "Bulau daemon for running the member-gated teaching material API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
