package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/magungh1/exporo-sme-export-assistant/internal/detector"
	"github.com/magungh1/exporo-sme-export-assistant/internal/profiles"
	"github.com/magungh1/exporo-sme-export-assistant/internal/prompts"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Render the assessment prompt for a profile",
	Long: `Renders the export readiness prompt for a business profile stored as JSON.

Examples:
  exporo prompt --profile profile.json --country Jepang`,
	RunE: runPrompt,
}

func init() {
	f := promptCmd.Flags()
	f.String("profile", "", "path to a business profile JSON file")
	f.String("country", "", "target country name, alias or code")
	_ = promptCmd.MarkFlagRequired("profile")
	_ = promptCmd.MarkFlagRequired("country")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("profile")
	country, _ := cmd.Flags().GetString("country")

	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "read profile")
	}
	var p profiles.BusinessProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return eris.Wrap(err, "decode profile")
	}

	if c, ok := detector.ResolveReply(country); ok {
		country = c.Name
	}
	out, err := prompts.FormatAssessment(prompts.AssessmentRequest{Profile: p, Country: country})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
