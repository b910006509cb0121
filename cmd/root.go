package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmorales/huq/internal/backend"
	"github.com/dmorales/huq/internal/output"
	"github.com/dmorales/huq/internal/session"
	"github.com/dmorales/huq/internal/state"
	"github.com/dmorales/huq/internal/workflow"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui       *output.UI
	appState *state.Store

	verbose bool
	dryRun  bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "huq",
	Short: "HU refinement review - submit, review, and approve AI-refined user stories",
	Long: `huq is the review console for the QA refinement backend.
Submit an HU (historia de usuario) by its tracker id, let the backend
produce a refined specification, then approve it or reject it with
feedback to trigger an automatic re-refinement pass.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/huq/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HUQ")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	viper.SetDefault("backend.base_url", "http://localhost:8000")
	viper.SetDefault("backend.timeout", "60s")
	viper.SetDefault("refine.language", "es")
	viper.SetDefault("reviewer.name", "")
	viper.SetDefault("reject.wait", true)
	viper.SetDefault("reject.poll_delay", "3s")
	viper.SetDefault("reject.poll_attempts", 5)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
	appState = state.New()
}

// rootRun handles `huq` with no subcommand: show the pending queue when a
// session exists, otherwise help.
func rootRun(cmd *cobra.Command) error {
	if _, ok := currentSession(); !ok {
		return cmd.Help()
	}
	return huListRun(cmd.Context())
}

// sessionStore returns the on-disk session store.
func sessionStore() *session.Store {
	dir, err := configDirFunc()
	if err != nil {
		dir = "."
	}
	return session.NewStore(dir)
}

// currentSession loads the persisted session, if any.
func currentSession() (session.Session, bool) {
	sess, ok, err := sessionStore().Load()
	if err != nil {
		ui.Warning("Cannot read session: %v", err)
		return session.Session{}, false
	}
	return sess, ok
}

// newClient builds a backend client carrying the given token.
func newClient(token string) *backend.Client {
	opts := []backend.Option{}
	if token != "" {
		opts = append(opts, backend.WithToken(token))
	}
	if timeout := viper.GetDuration("backend.timeout"); timeout > 0 {
		opts = append(opts, backend.WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	if verbose {
		opts = append(opts, backend.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	return backend.New(viper.GetString("backend.base_url"), opts...)
}

// requireSession is the gate for every authenticated command: it loads the
// persisted session and returns a client carrying its token.
func requireSession() (session.Session, *backend.Client, error) {
	sess, ok := currentSession()
	if !ok {
		return session.Session{}, nil, fmt.Errorf("not logged in — run 'huq login' first")
	}
	return sess, newClient(sess.Token), nil
}

// newController builds the review controller over the shared state store.
func newController(api workflow.Backend) *workflow.Controller {
	return workflow.New(api, appState, workflow.Config{
		Language:     viper.GetString("refine.language"),
		PollDelay:    viper.GetDuration("reject.poll_delay"),
		PollAttempts: viper.GetInt("reject.poll_attempts"),
	})
}

// reviewerName resolves who signs approvals and rejections: explicit
// config first, the session username otherwise.
func reviewerName(sess session.Session) string {
	if name := viper.GetString("reviewer.name"); name != "" {
		return name
	}
	return sess.Username
}

// friendly translates client errors for the terminal. A 401 tears the
// session down so the next command prompts for login.
func friendly(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, backend.ErrUnauthorized) {
		_ = sessionStore().Clear()
		return fmt.Errorf("session expired — run 'huq login' to sign in again")
	}
	if errors.Is(err, backend.ErrConnection) {
		return fmt.Errorf("cannot reach backend at %s — check backend.base_url and your network", viper.GetString("backend.base_url"))
	}
	return err
}

// pollTimeout bounds how long a reject --wait may spend polling for the
// re-refined content.
func pollTimeout() time.Duration {
	delay := viper.GetDuration("reject.poll_delay")
	attempts := viper.GetInt("reject.poll_attempts")
	if delay <= 0 {
		delay = 3 * time.Second
	}
	if attempts <= 0 {
		attempts = 5
	}
	// Exponential backoff upper bound plus slack for the requests themselves.
	return delay*time.Duration(1<<uint(attempts)) + 30*time.Second
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(ui.Out, "huq %s (commit %s, built %s)\n", buildVersion, buildCommit, buildDate)
	},
}
