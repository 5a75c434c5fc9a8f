package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/paul-bokelman/hem/client"
	"github.com/paul-bokelman/hem/internal/config"
	"github.com/paul-bokelman/hem/internal/logger"
)

const commandTimeout = 60 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *client.Client
	store   *client.SQLiteStore
	session *client.Session
}

type rootFlags struct {
	apiURL   string
	adminKey string
	stateDir string
	logLevel string
	debug    bool
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "hemctl",
		Short:         "Command line client for the home assistant backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "Backend base URL (overrides HEM_API_URL)")
	pf.StringVar(&flags.adminKey, "admin-key", "", "Admin key for action management (overrides HEM_ADMIN_KEY)")
	pf.StringVar(&flags.stateDir, "state-dir", "", "Directory for local state (overrides HEM_STATE_DIR)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides HEM_LOG_LEVEL)")
	pf.BoolVarP(&flags.debug, "debug", "d", false, "Log every HTTP request and response")

	rootCmd.AddCommand(newWhoamiCmd(a))
	rootCmd.AddCommand(newForgetCmd(a))
	rootCmd.AddCommand(newActionsCmd(a))
	rootCmd.AddCommand(newMacrosCmd(a))
	rootCmd.AddCommand(newRespondCmd(a))
	rootCmd.AddCommand(newUploadCmd(a))

	return rootCmd
}

func (a *app) init(cmd *cobra.Command, flags rootFlags) error {
	// Quiet until the configured level is known.
	log.Logger = logger.NewWithWriter(cmd.ErrOrStderr(), "hemctl").Level(zerolog.WarnLevel)

	cfg, err := config.New()
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("api-url") {
		cfg.APIURL = flags.apiURL
	}
	if f.Changed("admin-key") {
		cfg.AdminKey = flags.adminKey
	}
	if f.Changed("state-dir") {
		cfg.StateDir = flags.stateDir
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("debug") {
		cfg.Debug = flags.debug
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	a.log = logger.NewWithWriter(cmd.ErrOrStderr(), "hemctl").Level(level)
	log.Logger = a.log // debug transport logs through the global logger
	a.cfg = cfg

	store, err := client.OpenStateStore(cmd.Context(), cfg.StateDir)
	if err != nil {
		return err
	}
	a.store = store

	a.client = client.New(cfg.APIURL,
		client.WithHTTPTimeout(cfg.HTTPTimeout),
		client.WithAdminKey(cfg.AdminKey),
		client.WithDebugLogging(cfg.Debug),
		client.WithUserAgent("hemctl"),
	)
	a.session = client.NewSession(a.client,
		client.WithStore(store),
		client.WithLogger(a.log),
		client.WithStaleTime(cfg.StaleTime),
		client.WithConfirmRetry(cfg.ConfirmAttempts, 200*time.Millisecond),
	)
	return nil
}

func (a *app) close() error {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.store != nil {
		err := a.store.Close()
		a.store = nil
		return err
	}
	return nil
}

// ctx bounds one command.
func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), commandTimeout)
}

// identity bootstraps and returns the device identity.
func (a *app) identity(ctx context.Context) (*client.User, error) {
	start := time.Now()
	u, err := a.session.Bootstrap(ctx)
	if err != nil {
		a.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("identity bootstrap failed")
		return nil, err
	}
	a.log.Debug().Str("user_id", u.ID).Dur("elapsed", time.Since(start)).Msg("identity ready")
	return u, nil
}
