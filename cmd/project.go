package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/huq/internal/backend"
	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/output"
	"github.com/dmorales/huq/internal/workflow"
)

var (
	projectName         string
	projectDesc         string
	projectAzureOrg     string
	projectAzureProject string
	projectAzurePAT     string
	projectClientID     string
	projectClientSecret string
	projectPassword     string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects (credential bundles scoping HU operations)",
	Long: `Manage projects. A project bundles the tracker and test-management
credentials the backend uses to fetch and refine HUs. At most one project
is active at a time; HU operations run against the active one.

Running bare 'huq project' is the same as 'huq project list'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun(cmd.Context())
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun(cmd.Context())
	},
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAddRun(cmd.Context(), args[0])
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <project>",
	Short: "Update a project's fields or credentials",
	Long: `Update a project. Only the flags you pass change; secret fields
(--azure-pat, --client-secret) are replaced when given and left untouched
otherwise. Stored secrets are never displayed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectUpdateRun(cmd, args[0])
	},
}

var projectActivateCmd = &cobra.Command{
	Use:   "activate <project>",
	Short: "Make a project the active scope for HU operations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectActivateRun(cmd.Context(), args[0])
	},
}

var projectRmCmd = &cobra.Command{
	Use:     "rm <project>",
	Aliases: []string{"delete"},
	Short:   "Delete a project",
	Long: `Delete a project. Deletion is confirmed with your account password,
and a project that still has HUs associated with it is not deleted; the
items are listed so they can be resolved first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectRmRun(cmd.Context(), args[0])
	},
}

var projectHUsCmd = &cobra.Command{
	Use:   "hus <project>",
	Short: "List the HUs associated with a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectHUsRun(cmd.Context(), args[0])
	},
}

func init() {
	addProjectFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&projectDesc, "desc", "", "Project description")
		cmd.Flags().StringVar(&projectAzureOrg, "azure-org", "", "Tracker organization")
		cmd.Flags().StringVar(&projectAzureProject, "azure-project", "", "Tracker project name")
		cmd.Flags().StringVar(&projectAzurePAT, "azure-pat", "", "Tracker personal access token (write-only)")
		cmd.Flags().StringVar(&projectClientID, "client-id", "", "Test-management client id")
		cmd.Flags().StringVar(&projectClientSecret, "client-secret", "", "Test-management client secret (write-only)")
	}
	addProjectFlags(projectAddCmd)
	_ = projectAddCmd.MarkFlagRequired("azure-org")
	_ = projectAddCmd.MarkFlagRequired("azure-project")
	_ = projectAddCmd.MarkFlagRequired("azure-pat")

	addProjectFlags(projectUpdateCmd)
	projectUpdateCmd.Flags().StringVar(&projectName, "name", "", "New project name")

	projectRmCmd.Flags().StringVarP(&projectPassword, "password", "p", "", "Account password confirmation (prompted if omitted)")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectActivateCmd)
	projectCmd.AddCommand(projectRmCmd)
	projectCmd.AddCommand(projectHUsCmd)
	rootCmd.AddCommand(projectCmd)
}

func projectListRun(ctx context.Context) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}

	projects, err := workflow.NewProjects(api, appState).Load(ctx)
	if err != nil {
		return friendly(err)
	}

	if len(projects) == 0 {
		ui.Info("No projects. Create one with: huq project add <name> --azure-org ... --azure-project ... --azure-pat ...")
		return nil
	}

	table := ui.Table([]string{"", "Name", "Organization", "Project", "Description"})
	for _, p := range projects {
		_ = table.Append([]string{
			output.ActiveMarker(p.IsActive),
			p.Name,
			p.AzureOrg,
			p.AzureProject,
			p.Description,
		})
	}
	_ = table.Render()
	return nil
}

func projectAddRun(ctx context.Context, name string) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}

	in := backend.ProjectInput{
		Name:         name,
		Description:  projectDesc,
		AzureOrg:     projectAzureOrg,
		AzureProject: projectAzureProject,
		AzurePAT:     projectAzurePAT,
		ClientID:     projectClientID,
		ClientSecret: projectClientSecret,
	}

	if dryRun {
		ui.DryRunMsg("Would create project %s (%s/%s)", name, in.AzureOrg, in.AzureProject)
		return nil
	}

	project, err := workflow.NewProjects(api, appState).Create(ctx, in)
	if err != nil {
		return friendly(err)
	}
	ui.Success("Created project %s", output.Cyan(project.Name))
	ui.Info("Activate it with: huq project activate %s", project.Name)
	return nil
}

func projectUpdateRun(cmd *cobra.Command, ref string) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ctrl := workflow.NewProjects(api, appState)

	project, err := resolveProjectRef(ctx, ctrl, ref)
	if err != nil {
		return err
	}

	// Unset flags keep the stored value; secrets are only replaced when given.
	in := backend.ProjectInput{
		Name:         project.Name,
		Description:  project.Description,
		AzureOrg:     project.AzureOrg,
		AzureProject: project.AzureProject,
		AzurePAT:     projectAzurePAT,
		ClientID:     project.ClientID,
		ClientSecret: projectClientSecret,
	}
	if cmd.Flags().Changed("name") {
		in.Name = projectName
	}
	if cmd.Flags().Changed("desc") {
		in.Description = projectDesc
	}
	if cmd.Flags().Changed("azure-org") {
		in.AzureOrg = projectAzureOrg
	}
	if cmd.Flags().Changed("azure-project") {
		in.AzureProject = projectAzureProject
	}
	if cmd.Flags().Changed("client-id") {
		in.ClientID = projectClientID
	}

	if dryRun {
		ui.DryRunMsg("Would update project %s", project.Name)
		return nil
	}

	updated, err := ctrl.Update(ctx, project.ID, in)
	if err != nil {
		return friendly(err)
	}
	ui.Success("Updated project %s", output.Cyan(updated.Name))
	return nil
}

func projectActivateRun(ctx context.Context, ref string) error {
	sess, api, err := requireSession()
	if err != nil {
		return err
	}
	ctrl := workflow.NewProjects(api, appState)

	project, err := resolveProjectRef(ctx, ctrl, ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would activate project %s", project.Name)
		return nil
	}

	activated, err := ctrl.Activate(ctx, project.ID)
	if err != nil {
		return friendly(err)
	}

	sess.ActiveProjectID = activated.ID
	sess.ActiveProject = activated.Name
	if err := sessionStore().Save(sess); err != nil {
		ui.Warning("Activated, but could not update the session cache: %v", err)
	}

	ui.Success("Active project is now %s", output.Cyan(activated.Name))
	return nil
}

func projectRmRun(ctx context.Context, ref string) error {
	sess, api, err := requireSession()
	if err != nil {
		return err
	}
	ctrl := workflow.NewProjects(api, appState)

	project, err := resolveProjectRef(ctx, ctrl, ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete project %s", project.Name)
		return nil
	}

	// Destructive, so confirm with the account password first.
	password := projectPassword
	if password == "" {
		if password, err = promptPassword(fmt.Sprintf("Password (confirm deleting %s): ", project.Name)); err != nil {
			return err
		}
	}
	valid, err := api.ValidatePassword(ctx, password)
	if err != nil {
		return friendly(err)
	}
	if !valid {
		return fmt.Errorf("password confirmation failed — project not deleted")
	}

	if err := ctrl.Delete(ctx, project.ID); err != nil {
		var notEmpty *workflow.ProjectNotEmptyError
		if errors.As(err, &notEmpty) {
			ui.Error("Project %s still has %d HUs — resolve them first:", project.Name, len(notEmpty.Items))
			renderHUTable(notEmpty.Items)
			return fmt.Errorf("project not deleted")
		}
		return friendly(err)
	}

	if sess.ActiveProjectID == project.ID {
		sess.ActiveProjectID = ""
		sess.ActiveProject = ""
		if err := sessionStore().Save(sess); err != nil {
			ui.Warning("Deleted, but could not update the session cache: %v", err)
		}
	}

	ui.Success("Deleted project %s", project.Name)
	return nil
}

func projectHUsRun(ctx context.Context, ref string) error {
	_, api, err := requireSession()
	if err != nil {
		return err
	}
	ctrl := workflow.NewProjects(api, appState)

	project, err := resolveProjectRef(ctx, ctrl, ref)
	if err != nil {
		return err
	}

	items, err := api.ProjectHUs(ctx, project.ID)
	if err != nil {
		return friendly(err)
	}
	if len(items) == 0 {
		ui.Info("Project %s has no HUs.", project.Name)
		return nil
	}
	renderHUTable(items)
	return nil
}

// resolveProjectRef matches by id or (case-insensitive) name.
func resolveProjectRef(ctx context.Context, ctrl *workflow.Projects, ref string) (models.Project, error) {
	projects, err := ctrl.Load(ctx)
	if err != nil {
		return models.Project{}, friendly(err)
	}
	for _, p := range projects {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return models.Project{}, fmt.Errorf("no project matching %q — see 'huq project list'", ref)
}
