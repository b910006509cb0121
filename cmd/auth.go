package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dmorales/huq/internal/session"
	"github.com/dmorales/huq/internal/state"
)

var (
	loginPassword    string
	registerEmail    string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in to the refinement backend",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := ""
		if len(args) > 0 {
			username = args[0]
		}
		return loginRun(cmd, username, loginPassword)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutRun()
	},
}

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create an account on the refinement backend",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := ""
		if len(args) > 0 {
			username = args[0]
		}
		return registerRun(cmd, username)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and active project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return whoamiRun(cmd)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted if omitted)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address (prompted if omitted)")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Password (prompted if omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func loginRun(cmd *cobra.Command, username, password string) error {
	ctx := cmd.Context()

	var err error
	if username == "" {
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	api := newClient("")
	token, err := api.Login(ctx, username, password)
	if err != nil {
		appState.Dispatch(state.LoginFailure{Err: err.Error()})
		return friendly(err)
	}

	user, err := api.Me(ctx)
	if err != nil {
		return friendly(err)
	}
	appState.Dispatch(state.LoginSuccess{User: user, Token: token})

	sess := session.Session{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		UserID:   user.ID,
	}

	// Cache the active project so the prompt can show it without a call.
	if proj, ok, err := api.ActiveProject(ctx); err == nil && ok {
		sess.ActiveProjectID = proj.ID
		sess.ActiveProject = proj.Name
	}

	if err := sessionStore().Save(sess); err != nil {
		return err
	}

	ui.Success("Logged in as %s", user.Username)
	if sess.ActiveProject != "" {
		ui.Info("Active project: %s", sess.ActiveProject)
	}
	return nil
}

func logoutRun() error {
	if _, ok := currentSession(); !ok {
		ui.Info("Not logged in")
		return nil
	}
	if err := sessionStore().Clear(); err != nil {
		return err
	}
	appState.Dispatch(state.Logout{})
	ui.Success("Logged out")
	return nil
}

func registerRun(cmd *cobra.Command, username string) error {
	ctx := cmd.Context()
	api := newClient("")

	var err error
	if username == "" {
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	email := registerEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password := registerPassword
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("username, email, and password are required")
	}

	// Pre-flight against the backend's password policy for a clean message
	// before attempting the registration itself.
	if ok, err := api.ValidatePassword(ctx, password); err != nil {
		return friendly(err)
	} else if !ok {
		return fmt.Errorf("password does not meet the backend's requirements")
	}

	user, err := api.Register(ctx, username, email, password)
	if err != nil {
		return friendly(err)
	}
	ui.Success("Account created: %s <%s>", user.Username, user.Email)

	return loginRun(cmd, username, password)
}

func whoamiRun(cmd *cobra.Command) error {
	ctx := cmd.Context()
	_, api, err := requireSession()
	if err != nil {
		return err
	}

	user, err := api.Me(ctx)
	if err != nil {
		return friendly(err)
	}

	fmt.Fprintf(ui.Out, "%s <%s>\n", user.Username, user.Email)
	if proj, ok, err := api.ActiveProject(ctx); err == nil && ok {
		fmt.Fprintf(ui.Out, "Active project: %s\n", proj.Name)
	} else {
		fmt.Fprintln(ui.Out, "Active project: (none)")
	}
	return nil
}

// promptLine reads one trimmed line from stdin.
func promptLine(label string) (string, error) {
	fmt.Fprint(ui.Out, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(label string) (string, error) {
	fmt.Fprint(ui.Out, label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(ui.Out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	return promptLine("")
}
