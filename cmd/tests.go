package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/output"
)

var testsXrayPath string

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "Generate test cases from refined specifications",
}

var testsGenerateCmd = &cobra.Command{
	Use:   "generate <hu-id>",
	Short: "Generate test cases for an item and register them in Xray",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return testsGenerateRun(cmd.Context(), args[0])
	},
}

func init() {
	testsGenerateCmd.Flags().StringVar(&testsXrayPath, "xray", "", "Xray folder path for the generated tests (required)")
	_ = testsGenerateCmd.MarkFlagRequired("xray")

	testsCmd.AddCommand(testsGenerateCmd)
	rootCmd.AddCommand(testsCmd)
}

func testsGenerateRun(ctx context.Context, ref string) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}

	azureID, err := models.ParseHUID(ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would generate tests for %s under %s", azureID, testsXrayPath)
		return nil
	}

	ui.Info("Generating tests for %s — this can take a minute...", azureID)
	cases, err := api.GenerateTests(ctx, azureID, testsXrayPath)
	if err != nil {
		return friendly(err)
	}

	if len(cases) == 0 {
		ui.Warning("The backend returned no test cases.")
		return nil
	}

	table := ui.Table([]string{"ID", "Name", "Steps", "Xray Path"})
	for _, tc := range cases {
		_ = table.Append([]string{
			output.Cyan(tc.ID),
			tc.Name,
			fmt.Sprintf("%d", len(tc.Steps)),
			tc.XrayPath,
		})
	}
	_ = table.Render()
	ui.Success("Generated %d test cases under %s", len(cases), testsXrayPath)
	return nil
}
