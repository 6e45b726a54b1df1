// ABOUTME: Dependency wiring shared by every command: config, storage, store, client, services
// ABOUTME: Also maps errors to exit codes and renders them for the terminal

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/learnctl/internal/client"
	"github.com/markalston/learnctl/internal/config"
	"github.com/markalston/learnctl/internal/logger"
	"github.com/markalston/learnctl/internal/notify"
	"github.com/markalston/learnctl/internal/services"
	"github.com/markalston/learnctl/internal/storage"
	"github.com/markalston/learnctl/internal/store"
	"github.com/markalston/learnctl/internal/validation"
)

const (
	exitOK    = 0
	exitAuth  = 1
	exitError = 2
)

// app holds the wired dependencies of one invocation
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	client   *client.Client
	auth     *services.AuthService
	catalog  *services.CatalogService
	learning *services.LearningService
	relay    *notify.Relay
	closeLog func() error
}

// logTarget installs the default logger once configuration is known.
// The returned func releases whatever it opened.
type logTarget func(cfg *config.Config) (func() error, error)

func logToStderr(*config.Config) (func() error, error) {
	logger.Init(os.Stderr)
	return func() error { return nil }, nil
}

// logToDataDir keeps the terminal clear for full-screen commands
func logToDataDir(cfg *config.Config) (func() error, error) {
	if cfg.Ephemeral {
		return logger.InitFile("")
	}
	return logger.InitFile(cfg.DataDir)
}

// newApp loads configuration, opens local state and restores the session
func newApp(ctx context.Context, notifyOut io.Writer, logs logTarget) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if ephemeral {
		cfg.Ephemeral = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	closeLog, err := logs(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	secure, general, err := openStorage(cfg)
	if err != nil {
		closeLog()
		return nil, err
	}

	log := slog.Default()
	relay := notify.NewRelay(notify.NewTerminalNotifier(notifyOut))
	notifier := notify.Multi{notify.LogNotifier{Logger: log}, relay}
	st := store.New(secure, general, store.WithNotifier(notifier), store.WithLogger(log))
	if err := st.Initialize(ctx, cfg.InitTimeout); err != nil {
		log.Warn("Local state only partially restored", "error", err)
	}

	opts := []client.Option{
		client.WithTokenStore(st),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
		client.WithFanOut(cfg.FanOut),
	}
	if cfg.AllProxy != "" {
		dial, err := client.NewProxyDialer(cfg.AllProxy, log)
		if err != nil {
			closeLog()
			return nil, fmt.Errorf("LEARN_ALL_PROXY: %w", err)
		}
		opts = append(opts, client.WithDialContext(dial))
	}

	a := wire(cfg, st, client.New(cfg.APIURL, opts...), log)
	a.relay = relay
	a.closeLog = closeLog
	return a, nil
}

func wire(cfg *config.Config, st *store.Store, c *client.Client, log *slog.Logger) *app {
	return &app{
		cfg:      cfg,
		logger:   log,
		store:    st,
		client:   c,
		auth:     services.NewAuthService(c, st, log),
		catalog:  services.NewCatalogService(c, st, log),
		learning: services.NewLearningService(st, log),
	}
}

// openStorage returns the protected and general tiers
func openStorage(cfg *config.Config) (storage.KV, storage.KV, error) {
	if cfg.Ephemeral {
		return storage.NewMemoryKV(), storage.NewMemoryKV(), nil
	}
	general, err := storage.NewFileKV(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data dir: %w", err)
	}
	secure, err := storage.OpenSecureDir(filepath.Join(cfg.DataDir, "secure"), cfg.KeyDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return secure, general, nil
}

// runner is the testable body of a command
type runner func(ctx context.Context, a *app, w io.Writer, args []string) int

// withApp adapts a runner into a cobra Run func with signal handling and exit codes
func withApp(run runner) func(cmd *cobra.Command, args []string) {
	return withAppLogging(logToStderr, run)
}

// withAppLogging is withApp with a chosen log destination
func withAppLogging(logs logTarget, run runner) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		logger.Init(os.Stderr)
		a, err := newApp(ctx, os.Stderr, logs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}

		exitCode := run(ctx, a, os.Stdout, args)
		if a.closeLog != nil {
			a.closeLog()
		}
		if exitCode != 0 {
			cancel()
			os.Exit(exitCode)
		}
	}
}

// exitCodeFor maps an error to the CLI exit code
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case client.IsAuth(err), errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, services.ErrNotEnrolled):
		return exitAuth
	default:
		return exitError
	}
}

// fail prints err and returns its exit code
func fail(w io.Writer, err error) int {
	fmt.Fprintln(w, formatError(err))
	return exitCodeFor(err)
}

func formatError(err error) string {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		msg := "Error: invalid input"
		for _, e := range fe {
			msg += fmt.Sprintf("\n  %s: %s", e.Field, e.Message)
		}
		return msg
	}
	switch {
	case client.IsAuth(err), errors.Is(err, services.ErrNotAuthenticated):
		return "Error: not logged in or session expired. Run 'learnctl login'."
	case errors.Is(err, client.ErrCanceled):
		return "Error: request canceled"
	}
	return fmt.Sprintf("Error: %s", client.MessageOf(err))
}

// writeJSON writes v as indented JSON and returns the exit code
func writeJSON(w io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(w, fmt.Errorf("failed to encode output: %w", err))
	}
	fmt.Fprintln(w, string(data))
	return exitOK
}

// requireLogin returns exitAuth with a message when there is no session
func requireLogin(a *app, w io.Writer) (int, bool) {
	if a.store.Session().Authenticated {
		return exitOK, true
	}
	return fail(w, services.ErrNotAuthenticated), false
}
