package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SendRequest represents the webhook direct JSON form.
type SendRequest struct {
	Text   string `json:"text"`
	UserID string `json:"userId,omitempty"`
}

// SendCmd creates the send command. It exercises the webhook's direct
// form, bypassing chat platform delivery and signature checks.
func SendCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Send a chat command to the webhook",
		Long:  "Sends text through the webhook's direct JSON form, as if a chat user typed it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, args[0], userID)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Chat user id to act as")

	return cmd
}

func runSend(cmd *cobra.Command, text, userID string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	raw, err := api.Post("/webhook", SendRequest{Text: text, UserID: userID})
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	var pretty map[string]interface{}
	if err := json.Unmarshal(raw, &pretty); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	output, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(output))

	return nil
}
