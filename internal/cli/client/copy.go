package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CopyRequest represents the copy API request.
type CopyRequest struct {
	Topic  string `json:"topic"`
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}

// CopyResponse represents the copy API response.
type CopyResponse struct {
	OK        bool            `json:"ok"`
	Answer    string          `json:"answer"`
	Tokens    json.RawMessage `json:"tokens"`
	LatencyMS int64           `json:"latency_ms"`
}

// CopyCmd creates the copy command.
func CopyCmd() *cobra.Command {
	var (
		email  string
		userID string
	)

	cmd := &cobra.Command{
		Use:   "copy <topic>",
		Short: "Generate marketing copy",
		Long:  "Generates a short marketing post opener for the given topic.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runCopy(cmd, args[0], email, userID, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Member email recorded with the request")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Chat user id recorded with the request")

	return cmd
}

func runCopy(cmd *cobra.Command, topic, email, userID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	raw, err := api.Post("/copy", CopyRequest{Topic: topic, UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("copy generation failed: %w", err)
	}

	var resp CopyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(resp.Answer)
	if resp.LatencyMS > 0 {
		fmt.Printf("\n(%d ms)\n", resp.LatencyMS)
	}

	return nil
}
