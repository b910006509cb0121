package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dmorales/huq/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactive review screen",
	Long: `Open the interactive review screen: browse the pending queue,
read the rendered refined specifications, and approve or reject items
without leaving the terminal. Rejections schedule a background re-fetch
so the re-refined item reappears in the queue when the backend is done.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, api, err := requireSession()
		if err != nil {
			return err
		}
		ctrl := newController(api)
		return tui.Run(ctrl, appState, reviewerName(sess))
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
