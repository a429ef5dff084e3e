package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/repositories"
	"github.com/desertthunder/dailydrive/internal/services"
	"github.com/desertthunder/dailydrive/internal/shared"
	"github.com/desertthunder/dailydrive/internal/tasks"
)

// PartnerReader is the read side of the partner API. Implemented by [services.PartnerService].
type PartnerReader interface {
	tasks.PlaylistFetcher
	Profile(ctx context.Context, sess *services.Session) *models.Profile
	AccountAttributes(ctx context.Context, sess *services.Session) *models.AccountAttributes
}

// SessionSource issues partner API sessions. Implemented by [services.SessionProvider].
type SessionSource interface {
	Session(ctx context.Context) (*services.Session, error)
}

// WebAPI lists episodes and rewrites playlists. Implemented by [services.WebAPIService].
type WebAPI interface {
	tasks.EpisodeSource
	tasks.PlaylistWriter
	CurrentUser(ctx context.Context) (string, error)
}

// RunStore persists drive update history. Implemented by [repositories.RunRepository].
type RunStore interface {
	tasks.RunRecorder
	List(ctx context.Context, limit int) ([]*models.Run, error)
	Get(ctx context.Context, id string) (*models.Run, error)
	GetBySequence(ctx context.Context, sequence int) (*models.Run, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	partner     PartnerReader
	sessions    SessionSource
	webapi      WebAPI
	runs        RunStore
	db          *sql.DB
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	interactive bool
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Dependencies left nil are built from the loaded config by [Runner.Init].
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Partner     PartnerReader
	Sessions    SessionSource
	WebAPI      WebAPI
	Runs        RunStore
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	// Interactive shows spinners during long fetches. Set only when stdout is a terminal.
	Interactive bool
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		partner:     opts.Partner,
		sessions:    opts.Sessions,
		webapi:      opts.WebAPI,
		runs:        opts.Runs,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		interactive: opts.Interactive,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, partnerCommand, driveCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Init loads the config named by the root --config flag and builds the services it describes.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config == nil {
		config, err := shared.LoadConfig(r.configPath)
		switch {
		case errors.Is(err, shared.ErrMissingConfig):
			r.logger.Debug("config file not found, using defaults and environment", "path", r.configPath)
			config = shared.EnvConfig()
		case err != nil:
			return ctx, err
		}
		r.config = config
	}

	if level := cmd.String("log-level"); level != "" {
		r.config.Log.Level = level
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	r.buildPartner()
	r.buildWebAPI(ctx)
	if err := r.openHistory(); err != nil {
		r.logger.Warn("run history unavailable", "error", err)
	}
	return ctx, nil
}

// Close releases the history database.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) buildPartner() {
	if r.partner != nil && r.sessions != nil {
		return
	}

	cfg := r.config.Partner
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = -1
	}
	transport := services.NewHTTPTransport(services.TransportOptions{
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Timeout(),
		MaxRetries:   retries,
		RoundTripper: r.httpClient.Transport,
		Logger:       shared.WithLogger(r.logger, "component", "partner"),
	})

	if r.sessions == nil {
		r.sessions = services.NewSessionProvider(transport, cfg.CookieFile, shared.WithLogger(r.logger, "component", "session"))
	}
	if r.partner == nil {
		r.partner = services.NewPartnerService(transport, services.PartnerOptions{
			PageLimit: cfg.PageLimit,
			MaxPages:  cfg.MaxPages,
			Logger:    shared.WithLogger(r.logger, "component", "partner"),
		})
	}
}

// buildWebAPI authorizes the Web API client with the saved token. Without one, commands that write ask for a login.
func (r *Runner) buildWebAPI(ctx context.Context) {
	if r.webapi != nil {
		return
	}

	creds := r.config.Credentials.Spotify
	tok := creds.Token()
	if tok == nil {
		return
	}

	conf, err := services.NewOAuthConfig(creds)
	if err != nil {
		r.logger.Debug("web api disabled", "error", err)
		return
	}
	src, err := services.NewTokenSource(ctx, conf, tok, r.saveToken)
	if err != nil {
		r.logger.Debug("web api disabled", "error", err)
		return
	}

	r.webapi = services.NewWebAPIService(
		services.NewOAuthClient(src, r.httpClient.Transport),
		shared.WithLogger(r.logger, "component", "webapi"),
	)
}

// saveToken writes refreshed Web API tokens back to the config file.
func (r *Runner) saveToken(tok *oauth2.Token) {
	r.config.Credentials.Spotify.Update(tok)
	if r.configPath == "" {
		return
	}
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Debug("not persisting refreshed token, no config file", "path", r.configPath)
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "error", err)
		return
	}
	r.logger.Debug("saved refreshed token", "path", r.configPath)
}

// openHistory opens the run database when it has been set up.
func (r *Runner) openHistory() error {
	if r.runs != nil {
		return nil
	}

	path := r.config.Database.Path
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("history database not found, run `dailydrive setup database`", "path", path)
		return nil
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.runs = repositories.NewRunRepository(db)
	return nil
}

// session acquires a partner API session.
func (r *Runner) session(ctx context.Context) (*services.Session, error) {
	if r.sessions == nil {
		return nil, fmt.Errorf("%w: partner session not initialized", shared.ErrServiceUnavailable)
	}
	sess, err := r.sessions.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire partner session: %w", err)
	}
	return sess, nil
}

// spin runs action behind a terminal spinner, or directly when not interactive.
func (r *Runner) spin(ctx context.Context, title string, action func(context.Context) error) error {
	if !r.interactive {
		return action(ctx)
	}
	return spinner.New().Title(title).Context(ctx).ActionWithErr(action).Run()
}

func (r *Runner) requireWebAPI() error {
	if r.webapi == nil {
		return fmt.Errorf("%w: Web API token missing, run `dailydrive auth login`", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeLine(s string) error {
	return r.writePlain("%s\n", s)
}

