package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dmorales/huq/internal/filter"
	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/output"
	"github.com/dmorales/huq/internal/workflow"
)

var (
	huStatus   string
	huSearch   string
	huModule   string
	huFeature  string
	huLang     string
	huFeedback string
	huWait     bool
	huRaw      bool
)

var huCmd = &cobra.Command{
	Use:   "hu",
	Short: "Manage the HU review queue",
	Long: `Submit tracker items for refinement, review the refined
specifications, and approve or reject them.

Running bare 'huq hu' is the same as 'huq hu list'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return huListRun(cmd.Context())
	},
}

var huSubmitCmd = &cobra.Command{
	Use:   "submit <tracker-id>",
	Short: "Submit a tracker item for AI refinement",
	Long: `Submit a tracker item for AI refinement. The identifier is the
numeric tracker id, with or without the HU- prefix (e.g. 109 or HU-109).
The call blocks until the backend finishes the initial refinement pass.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return huSubmitRun(cmd.Context(), args[0])
	},
}

var huListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List pending items awaiting review",
	RunE: func(cmd *cobra.Command, args []string) error {
		return huListRun(cmd.Context())
	},
}

var huHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List reviewed items (accepted and rejected)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return huHistoryRun(cmd.Context())
	},
}

var huShowCmd = &cobra.Command{
	Use:   "show <hu-id>",
	Short: "Show an item's refined specification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return huShowRun(cmd.Context(), args[0])
	},
}

var huApproveCmd = &cobra.Command{
	Use:   "approve <hu-id>",
	Short: "Approve a refined specification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return huApproveRun(cmd.Context(), args[0])
	},
}

var huRejectCmd = &cobra.Command{
	Use:   "reject <hu-id>",
	Short: "Reject a refined specification with feedback",
	Long: `Reject a refined specification. Feedback of at least 10 characters
is required; the backend uses it to produce a new refinement pass. By
default the command waits for the re-refined content (see reject.wait).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return huRejectRun(cmd, args[0])
	},
}

var huRefreshCmd = &cobra.Command{
	Use:   "refresh <hu-id>",
	Short: "Re-fetch one item from the backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return huRefreshRun(cmd.Context(), args[0])
	},
}

var huRmCmd = &cobra.Command{
	Use:     "rm <hu-id>",
	Aliases: []string{"delete"},
	Short:   "Delete an item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return huRmRun(cmd.Context(), args[0])
	},
}

func init() {
	huSubmitCmd.Flags().StringVar(&huLang, "lang", "", "Refinement language: es, en (default from refine.language)")

	huListCmd.Flags().StringVar(&huStatus, "status", "", "Filter by status: pending, accepted, rejected, all")
	huListCmd.Flags().StringVar(&huSearch, "search", "", "Search title, tracker id, and content")
	huListCmd.Flags().StringVar(&huModule, "module", "", "Filter by module label")
	huListCmd.Flags().StringVar(&huFeature, "feature", "", "Filter by feature label")

	huShowCmd.Flags().BoolVar(&huRaw, "raw", false, "Print raw markdown without rendering")

	huRejectCmd.Flags().StringVarP(&huFeedback, "feedback", "m", "", "Rejection feedback (prompted if omitted)")
	huRejectCmd.Flags().BoolVar(&huWait, "wait", true, "Wait for the re-refined content")

	huCmd.AddCommand(huSubmitCmd)
	huCmd.AddCommand(huListCmd)
	huCmd.AddCommand(huHistoryCmd)
	huCmd.AddCommand(huShowCmd)
	huCmd.AddCommand(huApproveCmd)
	huCmd.AddCommand(huRejectCmd)
	huCmd.AddCommand(huRefreshCmd)
	huCmd.AddCommand(huRmCmd)
	rootCmd.AddCommand(huCmd)
}

func huSubmitRun(ctx context.Context, identifier string) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}

	if huLang != "" {
		viper.Set("refine.language", huLang)
	}
	ctrl := newController(api)

	if dryRun {
		ui.DryRunMsg("Would submit %s for refinement", identifier)
		return nil
	}

	ui.Info("Refining %s — this can take a minute...", identifier)
	hu, err := ctrl.Submit(ctx, identifier)
	if err != nil {
		return friendly(err)
	}

	ui.Success("Submitted %s: %s", output.Cyan(hu.OriginalID), hu.Title)
	ui.Info("Review it with: huq hu show %s", hu.OriginalID)
	return nil
}

func huListRun(ctx context.Context) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}
	ctrl := newController(api)

	status := models.HUStatus(huStatus)
	var items []models.HU
	switch {
	case huStatus == "" || status == models.HUStatusPending:
		if err := ctrl.Load(ctx); err != nil {
			return friendly(err)
		}
		items = appState.Review().Items
	case huStatus == models.FilterAll:
		if items, err = api.ListHUs(ctx, ""); err != nil {
			return friendly(err)
		}
	default:
		if !status.Valid() {
			return fmt.Errorf("unknown status %q (want pending, accepted, rejected, or all)", huStatus)
		}
		if items, err = api.ListHUs(ctx, status); err != nil {
			return friendly(err)
		}
	}

	opts := models.FilterOptions{Search: huSearch, Module: huModule, Feature: huFeature}
	filtered := filter.Apply(items, opts)

	if len(filtered) == 0 {
		if opts.Active() {
			ui.Info("No items match the current filters.")
		} else {
			ui.Info("No items. Submit one with: huq hu submit <tracker-id>")
		}
		return nil
	}

	renderHUTable(filtered)

	if opts.Active() {
		counts := filter.Count(items, opts)
		fmt.Fprintf(ui.Out, "\n%d of %d items shown\n", counts.Filtered, counts.Total)
	}
	return nil
}

func huHistoryRun(ctx context.Context) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}
	ctrl := newController(api)

	items, err := ctrl.History(ctx)
	if err != nil {
		return friendly(err)
	}

	opts := models.FilterOptions{Search: huSearch, Module: huModule, Feature: huFeature}
	filtered := filter.Apply(items, opts)

	if len(filtered) == 0 {
		ui.Info("No reviewed items yet.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Module", "Status", "Reviewer", "Cycles", "Updated"})
	for _, hu := range filtered {
		_ = table.Append([]string{
			hu.OriginalID,
			hu.Title,
			hu.Module,
			output.StatusColor(string(hu.Status)),
			hu.QAReviewer,
			fmt.Sprintf("%d", hu.Refinements),
			hu.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
	return nil
}

func huShowRun(ctx context.Context, ref string) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}

	hu, err := resolveHU(ctx, api, ref)
	if err != nil {
		return friendly(err)
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(hu.OriginalID), hu.Title)
	fmt.Fprintf(ui.Out, "Status:   %s\n", output.StatusColor(string(hu.Status)))
	fmt.Fprintf(ui.Out, "Module:   %s\n", hu.Module)
	fmt.Fprintf(ui.Out, "Feature:  %s\n", hu.Feature)
	if hu.QAReviewer != "" {
		fmt.Fprintf(ui.Out, "Reviewer: %s\n", hu.QAReviewer)
	}
	if hu.Refinements > 0 {
		fmt.Fprintf(ui.Out, "Cycles:   %d\n", hu.Refinements)
	}
	if hu.Feedback != "" {
		fmt.Fprintf(ui.Out, "Feedback: %s\n", hu.Feedback)
	}
	fmt.Fprintf(ui.Out, "Updated:  %s\n\n", hu.UpdatedAt.Format("2006-01-02 15:04"))

	if huRaw {
		fmt.Fprintln(ui.Out, hu.Content)
		return nil
	}
	fmt.Fprintln(ui.Out, output.Markdown(hu.Content, displayWidth()))
	return nil
}

func huApproveRun(ctx context.Context, ref string) error {
	sess, api, err := requireSession()
	if err != nil {
		return err
	}
	ctrl := newController(api)

	hu, err := loadPendingItem(ctx, ctrl, ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would approve %s: %s", hu.OriginalID, hu.Title)
		return nil
	}

	if err := ctrl.Approve(ctx, hu.ID, reviewerName(sess)); err != nil {
		return friendly(err)
	}
	ui.Success("Approved %s: %s", output.Cyan(hu.OriginalID), hu.Title)
	return nil
}

func huRejectRun(cmd *cobra.Command, ref string) error {
	sess, api, err := requireSession()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ctrl := newController(api)

	hu, err := loadPendingItem(ctx, ctrl, ref)
	if err != nil {
		return err
	}

	feedback := huFeedback
	if feedback == "" {
		if feedback, err = promptLine("Feedback (min 10 chars): "); err != nil {
			return err
		}
	}

	if dryRun {
		ui.DryRunMsg("Would reject %s with feedback: %s", hu.OriginalID, feedback)
		return nil
	}

	if err := ctrl.Reject(ctx, hu.ID, feedback, reviewerName(sess)); err != nil {
		return friendly(err)
	}
	ui.Success("Rejected %s — the backend is re-refining it", output.Cyan(hu.OriginalID))

	wait := viper.GetBool("reject.wait")
	if cmd.Flags().Changed("wait") {
		wait = huWait
	}
	if !wait {
		ui.Info("Check back with: huq hu refresh %s", hu.OriginalID)
		return nil
	}

	ui.Info("Waiting for the re-refined content...")
	waitCtx, cancel := context.WithTimeout(ctx, pollTimeout())
	defer cancel()
	updated, err := ctrl.AwaitReRefinement(waitCtx, hu.ID)
	if err != nil {
		ui.Warning("%v", err)
		return nil
	}
	ui.Success("%s is back in the queue (cycle %d)", output.Cyan(updated.OriginalID), updated.Refinements)
	return nil
}

func huRefreshRun(ctx context.Context, ref string) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}
	ctrl := newController(api)

	hu, err := resolveHU(ctx, api, ref)
	if err != nil {
		return friendly(err)
	}
	updated, err := ctrl.Refresh(ctx, hu.ID)
	if err != nil {
		return friendly(err)
	}
	ui.Success("%s is %s", output.Cyan(updated.OriginalID), output.StatusColor(string(updated.Status)))
	return nil
}

func huRmRun(ctx context.Context, ref string) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}
	ctrl := newController(api)

	hu, err := resolveHU(ctx, api, ref)
	if err != nil {
		return friendly(err)
	}

	if dryRun {
		ui.DryRunMsg("Would delete %s: %s", hu.OriginalID, hu.Title)
		return nil
	}

	if err := ctrl.Delete(ctx, hu.ID); err != nil {
		return friendly(err)
	}
	ui.Success("Deleted %s: %s", output.Cyan(hu.OriginalID), hu.Title)
	return nil
}

// renderHUTable prints the standard queue table.
func renderHUTable(items []models.HU) {
	table := ui.Table([]string{"ID", "Title", "Module", "Feature", "Status", "Updated"})
	for _, hu := range items {
		_ = table.Append([]string{
			hu.OriginalID,
			hu.Title,
			hu.Module,
			hu.Feature,
			output.StatusColor(string(hu.Status)),
			hu.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
}

// resolveHU finds an item by backend id or tracker reference (HU-109 / 109),
// across every status.
func resolveHU(ctx context.Context, api huLister, ref string) (models.HU, error) {
	items, err := api.ListHUs(ctx, "")
	if err != nil {
		return models.HU{}, err
	}

	want := ref
	if num, err := models.ParseHUID(ref); err == nil {
		want = "HU-" + num
	}
	for _, hu := range items {
		if hu.ID == ref || strings.EqualFold(hu.OriginalID, want) {
			return hu, nil
		}
	}
	return models.HU{}, fmt.Errorf("no item matching %q — see 'huq hu list --status all'", ref)
}

// loadPendingItem loads the pending queue into the store and resolves ref
// against it, so the review transition check sees current state.
func loadPendingItem(ctx context.Context, ctrl *workflow.Controller, ref string) (models.HU, error) {
	if err := ctrl.Load(ctx); err != nil {
		return models.HU{}, friendly(err)
	}

	want := ref
	if num, err := models.ParseHUID(ref); err == nil {
		want = "HU-" + num
	}
	for _, hu := range appState.Review().Items {
		if hu.ID == ref || strings.EqualFold(hu.OriginalID, want) {
			return hu, nil
		}
	}
	return models.HU{}, fmt.Errorf("no pending item matching %q — see 'huq hu list'", ref)
}

type huLister interface {
	ListHUs(ctx context.Context, status models.HUStatus) ([]models.HU, error)
}

// displayWidth caps markdown rendering at the terminal width.
func displayWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < 100 {
		return w
	}
	return 100
}
