package main

import (
	"context"
	"errors"
	"io"
	"os"

	"geonotes/internal/auth"
	"geonotes/internal/client"
	"geonotes/internal/config"
	"geonotes/internal/dispatch"
	"geonotes/internal/logging"
	"geonotes/internal/notes"
	"geonotes/internal/store"
	"geonotes/internal/thread"
	"geonotes/internal/types"
)

type notifier interface {
	Info(msg string)
	Error(msg string)
}

// serviceOptions tweaks how the shared services are built for a command.
// An empty logFile logs to stderr at warn.
type serviceOptions struct {
	notifier notifier
	renderer thread.Renderer
	logFile  string
}

type servicesFactory func(opts serviceOptions) (*services, error)

type services struct {
	cfg    config.Config
	client *client.Client
	repo   store.Repository
	table  *dispatch.Table
	auth   *auth.Manager
	notes  *notes.View
	logger logging.Logger

	closers []io.Closer
}

func newServices(opts serviceOptions) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var logger logging.Logger
	var closers []io.Closer
	if opts.logFile != "" {
		fileLogger, closer, err := logging.OpenFile(opts.logFile, logging.ParseLevel(cfg.LogLevel()))
		if err != nil {
			return nil, err
		}
		logger = fileLogger
		closers = append(closers, closer)
	} else {
		logger = logging.New(os.Stderr, logging.Warn)
	}

	api, err := client.New(cfg, logger)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	path, err := config.StateDBPath()
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	repo, err := store.NewBboltRepository(path)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	svc := buildServices(cfg, repo, api, logger, opts)
	svc.closers = append(svc.closers, closers...)
	return svc, nil
}

// buildServices wires the auth manager and the notes view onto one dispatch
// table, the same way every surface uses them.
func buildServices(cfg config.Config, repo store.Repository, api *client.Client, logger logging.Logger, opts serviceOptions) *services {
	if logger == nil {
		logger = logging.Nop()
	}
	table := dispatch.NewTable()
	manager := auth.NewManager(api, repo.Session(),
		auth.WithNotifier(opts.notifier),
		auth.WithLogger(logger),
	)
	manager.RegisterActions(table)

	renderer := opts.renderer
	if renderer == nil {
		renderer = thread.TextRenderer{}
	}
	view := notes.NewView(api, manager, notes.NewLayer(), table,
		notes.WithNotifier(opts.notifier),
		notes.WithLogger(logger),
		notes.WithRenderer(renderer),
		notes.WithConfig(notes.Config{Note: cfg.Note, MaxIndent: cfg.MaxReplyIndent()}),
	)
	view.RegisterActions()
	manager.Subscribe(func(auth.State) { view.Refresh(context.Background()) })

	return &services{
		cfg:     cfg,
		client:  api,
		repo:    repo,
		table:   table,
		auth:    manager,
		notes:   view,
		logger:  logger,
		closers: []io.Closer{repo},
	}
}

// restore loads the persisted session and reports whether it is still valid.
func (s *services) restore(ctx context.Context) (bool, error) {
	return s.auth.CheckStatus(ctx)
}

func (s *services) requireLogin(ctx context.Context) error {
	ok, err := s.restore(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errNotLoggedIn
	}
	return nil
}

func (s *services) defaultViewport() types.Viewport {
	return types.Viewport{
		Center: types.LatLng{Lat: s.cfg.Map.DefaultLat, Lng: s.cfg.Map.DefaultLng},
		Zoom:   s.cfg.DefaultZoom(),
	}
}

func (s *services) Close() error {
	var errs []error
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func closeAll(closers []io.Closer) {
	for _, closer := range closers {
		_ = closer.Close()
	}
}

var errNotLoggedIn = errors.New("not logged in; run 'geonotes login' first")
