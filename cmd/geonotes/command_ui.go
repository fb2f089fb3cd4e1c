package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"geonotes/internal/app"
	"geonotes/internal/config"
	"geonotes/internal/logging"
	"geonotes/internal/shell"
	"geonotes/internal/thread"
)

type UICommand struct {
	stderr      io.Writer
	newServices servicesFactory
	runUI       func(ctx context.Context, deps app.Deps) error
}

func NewUICommand(stderr io.Writer, newServices servicesFactory, runUI func(ctx context.Context, deps app.Deps) error) *UICommand {
	return &UICommand{
		stderr:      stderr,
		newServices: newServices,
		runUI:       runUI,
	}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logPath, err := config.UILogPath()
	if err != nil {
		return err
	}
	notices := app.NewNotifier()
	svc, err := c.newServices(serviceOptions{
		notifier: notices,
		renderer: thread.TextRenderer{},
		logFile:  logPath,
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	svc.logger.Info("starting ui", logging.F("api", svc.client.BaseURL()))
	return c.runUI(ctx, app.Deps{
		Auth:     svc.auth,
		Notes:    svc.notes,
		Table:    svc.table,
		AppState: svc.repo.AppState(),
		Notices:  notices,
		Config:   svc.cfg,
		Logger:   svc.logger,
	})
}

type ShellCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
	newReader   func(historyPath string) (shell.LineReader, error)
}

func NewShellCommand(stdout, stderr io.Writer, newServices servicesFactory, newReader func(historyPath string) (shell.LineReader, error)) *ShellCommand {
	return &ShellCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
		newReader:   newReader,
	}
}

func (c *ShellCommand) Run(args []string) error {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := c.newServices(serviceOptions{
		notifier: shell.NewNotifier(c.stdout),
		renderer: thread.TextRenderer{},
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	if _, err := svc.restore(ctx); err != nil {
		return err
	}
	historyPath, err := config.HistoryPath()
	if err != nil {
		return err
	}
	reader, err := c.newReader(historyPath)
	if err != nil {
		return err
	}
	sh := shell.New(svc.table, svc.auth, svc.notes, c.stdout,
		shell.WithLogger(svc.logger),
		shell.WithViewport(svc.defaultViewport()),
	)
	return sh.Run(ctx, reader)
}
