package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"geonotes/internal/shell"
)

type LoginCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
	prompt      prompter
}

func NewLoginCommand(stdout, stderr io.Writer, newServices servicesFactory, prompt prompter) *LoginCommand {
	return &LoginCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
		prompt:      prompt,
	}
}

func (c *LoginCommand) Run(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	user := fs.String("user", "", "username")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" && fs.NArg() > 0 {
		*user = fs.Arg(0)
	}

	var err error
	if *user == "" {
		if *user, err = c.prompt.Line("Username: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = c.prompt.Secret("Password: "); err != nil {
			return err
		}
	}

	svc, err := c.newServices(serviceOptions{notifier: shell.NewNotifier(c.stderr)})
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.auth.Login(context.Background(), *user, *password); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Logged in as %s\n", svc.auth.CurrentUser())
	return nil
}

type LogoutCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
}

func NewLogoutCommand(stdout, stderr io.Writer, newServices servicesFactory) *LogoutCommand {
	return &LogoutCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
	}
}

func (c *LogoutCommand) Run(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := c.newServices(serviceOptions{})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	if _, err := svc.restore(ctx); err != nil {
		return err
	}
	if err := svc.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Logged out.")
	return nil
}

type RegisterCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
	prompt      prompter
}

func NewRegisterCommand(stdout, stderr io.Writer, newServices servicesFactory, prompt prompter) *RegisterCommand {
	return &RegisterCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
		prompt:      prompt,
	}
}

func (c *RegisterCommand) Run(args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var creds registration
	creds.bind(fs)
	noWait := fs.Bool("no-wait", false, "send the code and exit; finish later with 'geonotes verify'")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := creds.fill(c.prompt); err != nil {
		return err
	}

	svc, err := c.newServices(serviceOptions{notifier: shell.NewNotifier(c.stderr)})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	svc.auth.ShowRegister()
	if err := svc.auth.SendVerification(ctx, creds.user, creds.password, creds.email); err != nil {
		return err
	}
	if *noWait {
		fmt.Fprintf(c.stdout, "Finish with: geonotes verify --user %s --email %s <code>\n", creds.user, creds.email)
		return nil
	}
	code, err := c.prompt.Line("Verification code: ")
	if err != nil {
		return err
	}
	if err := svc.auth.VerifyAndRegister(ctx, code); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Logged in as %s\n", svc.auth.CurrentUser())
	return nil
}

type VerifyCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
	prompt      prompter
}

func NewVerifyCommand(stdout, stderr io.Writer, newServices servicesFactory, prompt prompter) *VerifyCommand {
	return &VerifyCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
		prompt:      prompt,
	}
}

func (c *VerifyCommand) Run(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var creds registration
	creds.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	code := strings.TrimSpace(fs.Arg(0))
	if code == "" {
		return errors.New("verification code is required")
	}
	if err := creds.fill(c.prompt); err != nil {
		return err
	}

	svc, err := c.newServices(serviceOptions{notifier: shell.NewNotifier(c.stderr)})
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.auth.ResumeRegistration(creds.user, creds.password, creds.email); err != nil {
		return err
	}
	if err := svc.auth.VerifyAndRegister(context.Background(), code); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Logged in as %s\n", svc.auth.CurrentUser())
	return nil
}

type WhoamiCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
}

func NewWhoamiCommand(stdout, stderr io.Writer, newServices servicesFactory) *WhoamiCommand {
	return &WhoamiCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
	}
}

func (c *WhoamiCommand) Run(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := c.newServices(serviceOptions{})
	if err != nil {
		return err
	}
	defer svc.Close()

	ok, err := svc.restore(context.Background())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.stdout, "not logged in")
		return nil
	}
	fmt.Fprintln(c.stdout, svc.auth.CurrentUser())
	return nil
}

// registration collects the account fields shared by register and verify.
type registration struct {
	user     string
	email    string
	password string
}

func (r *registration) bind(fs *flag.FlagSet) {
	fs.StringVar(&r.user, "user", "", "username")
	fs.StringVar(&r.email, "email", "", "email address")
	fs.StringVar(&r.password, "password", "", "password (prompted when empty)")
}

func (r *registration) fill(prompt prompter) error {
	var err error
	if r.user == "" {
		if r.user, err = prompt.Line("Username: "); err != nil {
			return err
		}
	}
	if r.email == "" {
		if r.email, err = prompt.Line("Email: "); err != nil {
			return err
		}
	}
	if r.password == "" {
		if r.password, err = prompt.Secret("Password: "); err != nil {
			return err
		}
	}
	return nil
}
