package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/susankaotw/bulau/internal/cli"
	"github.com/susankaotw/bulau/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "bulau",
		Short: "Bulau CLI - teaching material lookup",
		Long: `Bulau CLI talks to a running bulau server.

Environment variables:
  BULAU_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.CopyCmd())
	rootCmd.AddCommand(client.SendCmd())
	rootCmd.AddCommand(client.HealthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
