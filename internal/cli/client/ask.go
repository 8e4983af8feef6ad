package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the answer API request.
type AskRequest struct {
	Email string `json:"email,omitempty"`
	Q     string `json:"q"`
}

// AskEntry is one knowledge entry in the answer API response.
type AskEntry struct {
	Topic            string `json:"主題"`
	Question         string `json:"問題"`
	PrimaryAnswer    string `json:"衛教版回覆"`
	ClinicalGuidance string `json:"專業版回覆"`
	MappedSegment    string `json:"建議動作"`
	Supplementary    string `json:"禁忌與注意"`
}

// AskResponse represents the answer API response.
type AskResponse struct {
	Mode    string          `json:"mode"`
	Answer  json.RawMessage `json:"answer"`
	Results []AskEntry      `json:"results"`
	Matched *string         `json:"matched"`
	Version *string         `json:"version"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Look up teaching material",
		Long:  "Looks up teaching material entries matching the question.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], email, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Member email for access")

	return cmd
}

func runAsk(cmd *cobra.Command, question, email string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	raw, err := api.Post("/answer", AskRequest{Email: email, Q: question})
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	var resp AskResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if resp.Matched == nil {
		var miss string
		if err := json.Unmarshal(resp.Answer, &miss); err == nil && miss != "" {
			fmt.Println(miss)
		} else {
			fmt.Println("No results found.")
		}
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(resp.Results))
	for i, entry := range resp.Results {
		fmt.Printf("%d. %s（%s）\n", i+1, entry.Question, entry.Topic)
		if entry.PrimaryAnswer != "" {
			fmt.Printf("   %s\n", entry.PrimaryAnswer)
		}
		if entry.MappedSegment != "" {
			fmt.Printf("   對應脊椎分節: %s\n", entry.MappedSegment)
		}
		if i < len(resp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
