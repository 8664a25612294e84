package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agbru/tabulate/internal/cli"
	"github.com/agbru/tabulate/internal/config"
	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/logging"
	"github.com/agbru/tabulate/internal/ui"
)

// Application represents the tabulate application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// HTTPClient is used for every upstream call when set.
	HTTPClient *http.Client
	logger     logging.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithHTTPClient routes upstream calls through c.
func WithHTTPClient(c *http.Client) AppOption {
	return func(a *Application) { a.HTTPClient = c }
}

// WithLogger replaces the stderr logger built from the configuration.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "tabulate"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	level, err := zerolog.ParseLevel(a.Config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	ui.InitTheme(a.Config.NoColor)
	if a.logger == nil {
		a.logger = logging.NewLogger(a.ErrWriter, "tabulate").With(logging.String("run_id", uuid.NewString()))
	}

	if a.Config.Mode == config.ModeServe {
		return a.runServe(ctx)
	}
	return a.runTabulation(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, config.Modes); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServe serves the tabulation modes over HTTP until interrupted.
func (a *Application) runServe(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	srv, err := a.buildServer()
	if err != nil {
		return a.fail(err)
	}
	if err := srv.Start(ctx); err != nil {
		return a.fail(err)
	}
	return apperrors.ExitSuccess
}

// fail reports err on the error writer and maps it to an exit code.
func (a *Application) fail(err error) int {
	fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
	return apperrors.ExitCodeFor(err)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
