package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aischool/aischool/internal/catalog"
	"github.com/aischool/aischool/internal/config"
	"github.com/aischool/aischool/internal/learner"
	"github.com/aischool/aischool/internal/llm"
	"github.com/aischool/aischool/internal/logger"
	"github.com/aischool/aischool/internal/progression"
	"github.com/aischool/aischool/internal/router"
	"github.com/aischool/aischool/internal/store"
	"github.com/aischool/aischool/internal/tutor"
)

var (
	errSignedOut = errors.New("not signed in: run `aischool user use EMAIL` or `aischool user create`")
	errSignedIn  = errors.New("already signed in: run `aischool user logout` first")
)

// app holds the dependencies shared by every command.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	store   *store.Store
	catalog *catalog.Catalog
	levels  progression.LevelTable
	tutor   *tutor.Service
	learner *learner.Service
	router  *router.Router
}

// openApp loads configuration, opens the store and builds the services.
// The tutor is only built when withTutor is set.
func openApp(cmd *cobra.Command, withTutor bool) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(config.Options{ConfigFile: configFile, EnvFile: envFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LoggerOptions())
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		log.Debug("loaded config file", "path", cfg.Source)
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	if err := store.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	levels := progression.DefaultLevels()
	st, err := store.Open(dbPath, store.WithLogger(log), store.WithLevels(levels))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{cfg: cfg, log: log, store: st, levels: levels}
	if err := a.build(ctx, cmd.ErrOrStderr(), withTutor); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context, stderr io.Writer, withTutor bool) error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}
	a.catalog = cat

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	if withTutor {
		a.tutor = tutor.NewService(a.newProvider(ctx, stderr), a.cfg.TutorConfig(), a.log)
	}

	a.learner = learner.NewService(a.store, a.tutor, a.catalog,
		learner.WithLevels(a.levels),
		learner.WithLocation(loc),
		learner.WithLogger(a.log),
	)

	_, err = a.learner.Active(ctx)
	switch {
	case err == nil:
		a.router = router.New(true)
	case errors.Is(err, learner.ErrNoActiveUser):
		a.router = router.New(false)
	default:
		return err
	}
	return nil
}

// newProvider builds the configured LLM provider. Without credentials the
// tutor runs on an empty mock so every answer is the fallback text.
func (a *app) newProvider(ctx context.Context, stderr io.Writer) llm.Provider {
	cfg := a.cfg.LLM
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "LLM provider not configured:", err)
		fmt.Fprintln(stderr, "The assistant will answer with fallback messages.")
		cfg.Provider = llm.ProviderMock
		cfg.Retry.MaxAttempts = 1
	}

	provider, err := llm.NewProvider(ctx, cfg, a.store.EventRepo(), a.log)
	if err != nil {
		fmt.Fprintln(stderr, "LLM provider unavailable:", err)
		cfg.Provider = llm.ProviderMock
		cfg.Retry.MaxAttempts = 1
		provider, _ = llm.NewProvider(ctx, cfg, a.store.EventRepo(), a.log)
	}
	return provider
}

// enter navigates to v and fails when the sign-in state does not allow it.
func (a *app) enter(v router.View) error {
	switch got := a.router.Push(v); {
	case got == v:
		return nil
	case got == router.Login:
		return errSignedOut
	default:
		return errSignedIn
	}
}

// current returns the signed-in learner for a view that requires one.
func (a *app) current(ctx context.Context, v router.View) (progression.Progress, error) {
	if err := a.enter(v); err != nil {
		return progression.Progress{}, err
	}
	return a.learner.Active(ctx)
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.log.Sync()
}
