package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"geonotes/internal/client"
	"geonotes/internal/logging"
	"geonotes/internal/store"
	"geonotes/internal/types"
)

type Step string

const (
	StepLogin    Step = "login"
	StepRegister Step = "register"
	StepVerify   Step = "verify"
)

const (
	MsgLoginSuccess        = "Login successful!"
	MsgLoginFailed         = "Login failed. Please check your credentials."
	MsgLogoutSuccess       = "Logged out successfully!"
	MsgVerificationSent    = "Verification code sent to your email!"
	MsgVerificationFailed  = "Failed to send verification code. Please try again."
	MsgRegistrationSuccess = "Registration successful! You are now logged in."
	MsgRegistrationFailed  = "Registration failed. Please try again."
)

const pendingRegistrationTTL = 15 * time.Minute

var (
	ErrMissingFields           = errors.New("all fields are required")
	ErrInvalidEmail            = errors.New("invalid email address")
	ErrMissingCode             = errors.New("verification code is required")
	ErrNoPendingRegistration   = errors.New("no pending registration")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrUserExists              = errors.New("username already exists")
)

// Message maps an auth error to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingFields):
		return "Please fill in all fields"
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address"
	case errors.Is(err, ErrMissingCode):
		return "Please enter the verification code"
	case errors.Is(err, ErrNoPendingRegistration):
		return "Registration data not found. Please start over."
	case errors.Is(err, ErrInvalidVerificationCode):
		return "Invalid verification code. Please check your email and try again."
	case errors.Is(err, ErrUserExists):
		return "Username already exists. Please choose a different username."
	default:
		return err.Error()
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type API interface {
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
	SendEmailVerification(ctx context.Context, email string) error
	Register(ctx context.Context, req client.RegisterRequest) error
	Logout(ctx context.Context) error
	CheckSession(ctx context.Context) (*client.SessionStatus, error)
	Session() *types.Session
	Restore(session *types.Session)
}

type Notifier interface {
	Info(msg string)
	Error(msg string)
}

type State struct {
	LoggedIn bool
	User     string
	Step     Step
}

type Listener func(State)

type pendingRegistration struct {
	username string
	password string
	email    string
}

type Manager struct {
	api      API
	sessions store.SessionStore
	notifier Notifier
	logger   logging.Logger
	pending  *cache.Cache

	mu        sync.Mutex
	state     State
	listeners []Listener
}

type Option func(*Manager)

func WithNotifier(notifier Notifier) Option {
	return func(m *Manager) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger.With(logging.F("component", "auth"))
		}
	}
}

func NewManager(api API, sessions store.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		sessions: sessions,
		notifier: nopNotifier{},
		logger:   logging.Nop(),
		pending:  cache.New(pendingRegistrationTTL, 2*pendingRegistrationTTL),
		state:    State{Step: StepLogin},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) IsLoggedIn() bool {
	return m.State().LoggedIn
}

func (m *Manager) CurrentUser() string {
	return m.State().User
}

// Subscribe registers fn for login and logout transitions.
func (m *Manager) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) ShowLogin() {
	m.pending.Delete(pendingKey)
	m.setStep(StepLogin)
}

func (m *Manager) ShowRegister() {
	m.setStep(StepRegister)
}

func (m *Manager) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		m.notifier.Error(Message(ErrMissingFields))
		return ErrMissingFields
	}
	resp, err := m.api.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		m.logger.Warn("login failed", logging.F("user", username), logging.Err(err))
		m.notifier.Error(MsgLoginFailed)
		return fmt.Errorf("login: %w", err)
	}
	m.loginSucceeded(ctx, resp.User, MsgLoginSuccess)
	return nil
}

func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("logout request failed", logging.Err(err))
	}
	if m.sessions != nil {
		if err := m.sessions.Clear(ctx); err != nil {
			m.logger.Warn("clear session failed", logging.Err(err))
		}
	}
	m.mu.Lock()
	m.state.LoggedIn = false
	m.state.User = ""
	state := m.state
	m.mu.Unlock()
	m.notifier.Info(MsgLogoutSuccess)
	m.publish(state)
	return nil
}

func (m *Manager) SendVerification(ctx context.Context, username, password, email string) error {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || password == "" || email == "" {
		m.notifier.Error(Message(ErrMissingFields))
		return ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		m.notifier.Error(Message(ErrInvalidEmail))
		return ErrInvalidEmail
	}
	if err := m.api.SendEmailVerification(ctx, email); err != nil {
		m.logger.Warn("send verification failed", logging.F("email", email), logging.Err(err))
		m.notifier.Error(MsgVerificationFailed)
		return fmt.Errorf("send verification: %w", err)
	}
	m.pending.SetDefault(pendingKey, pendingRegistration{username: username, password: password, email: email})
	m.notifier.Info(MsgVerificationSent)
	m.setStep(StepVerify)
	return nil
}

// ResumeRegistration records a registration whose code was sent by an
// earlier process, so VerifyAndRegister can finish it.
func (m *Manager) ResumeRegistration(username, password, email string) error {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || password == "" || email == "" {
		return ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	m.pending.SetDefault(pendingKey, pendingRegistration{username: username, password: password, email: email})
	m.setStep(StepVerify)
	return nil
}

func (m *Manager) VerifyAndRegister(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		m.notifier.Error(Message(ErrMissingCode))
		return ErrMissingCode
	}
	raw, ok := m.pending.Get(pendingKey)
	if !ok {
		m.notifier.Error(Message(ErrNoPendingRegistration))
		m.setStep(StepLogin)
		return ErrNoPendingRegistration
	}
	pending := raw.(pendingRegistration)

	err := m.api.Register(ctx, client.RegisterRequest{
		Username: pending.username,
		Password: pending.password,
		Email:    pending.email,
		EmailKey: code,
	})
	if err != nil {
		m.logger.Warn("register failed", logging.F("user", pending.username), logging.Err(err))
		switch {
		case strings.Contains(err.Error(), "wrong email key"):
			m.notifier.Error(Message(ErrInvalidVerificationCode))
			return ErrInvalidVerificationCode
		case strings.Contains(err.Error(), "already exists"):
			m.notifier.Error(Message(ErrUserExists))
			m.setStep(StepRegister)
			return ErrUserExists
		default:
			m.notifier.Error(MsgRegistrationFailed)
			return fmt.Errorf("register: %w", err)
		}
	}
	m.pending.Delete(pendingKey)

	resp, err := m.api.Login(ctx, pending.username, pending.password)
	if err != nil {
		m.logger.Warn("login after register failed", logging.F("user", pending.username), logging.Err(err))
		m.notifier.Error(MsgLoginFailed)
		m.setStep(StepLogin)
		return fmt.Errorf("login after register: %w", err)
	}
	m.loginSucceeded(ctx, resp.User, MsgRegistrationSuccess)
	return nil
}

// CheckStatus restores a persisted session and asks the server whether it is
// still valid. An invalid session is not an error. Listeners hear the outcome
// either way.
func (m *Manager) CheckStatus(ctx context.Context) (bool, error) {
	if m.sessions != nil {
		session, err := m.sessions.Load(ctx)
		switch {
		case err == nil:
			m.api.Restore(session)
		case errors.Is(err, store.ErrSessionNotFound):
		default:
			return false, fmt.Errorf("load session: %w", err)
		}
	}

	status, err := m.api.CheckSession(ctx)
	if err != nil {
		m.logger.Debug("session check failed", logging.Err(err))
		if m.sessions != nil && client.AsAPIError(err) != nil {
			_ = m.sessions.Clear(ctx)
		}
		m.mu.Lock()
		m.state.LoggedIn = false
		m.state.User = ""
		state := m.state
		m.mu.Unlock()
		m.publish(state)
		return false, nil
	}

	m.mu.Lock()
	m.state.LoggedIn = true
	m.state.User = status.UserName()
	state := m.state
	m.mu.Unlock()
	m.persist(ctx)
	m.publish(state)
	return true, nil
}

func (m *Manager) loginSucceeded(ctx context.Context, user, message string) {
	m.mu.Lock()
	m.state = State{LoggedIn: true, User: user, Step: StepLogin}
	state := m.state
	m.mu.Unlock()
	m.persist(ctx)
	m.logger.Info("logged in", logging.F("user", user))
	m.notifier.Info(message)
	m.publish(state)
}

func (m *Manager) persist(ctx context.Context) {
	if m.sessions == nil {
		return
	}
	session := m.api.Session()
	if session == nil {
		return
	}
	if err := m.sessions.Save(ctx, session); err != nil {
		m.logger.Warn("save session failed", logging.Err(err))
	}
}

func (m *Manager) setStep(step Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Step = step
}

func (m *Manager) publish(state State) {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
}

const pendingKey = "pending"

type nopNotifier struct{}

func (nopNotifier) Info(string)  {}
func (nopNotifier) Error(string) {}
