package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// HealthCmd creates the health command.
func HealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server configuration and store reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd)
		},
	}
}

func runHealth(cmd *cobra.Command) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	raw, err := api.Get("/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	var pretty map[string]interface{}
	if err := json.Unmarshal(raw, &pretty); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	output, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(output))

	return nil
}
