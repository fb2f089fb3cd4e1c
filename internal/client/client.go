package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"geonotes/internal/config"
	"geonotes/internal/logging"
	"geonotes/internal/types"
)

var ErrNotAuthenticated = errors.New("not logged in")

type Client struct {
	baseURL string
	http    *http.Client
	jar     *sessionJar
	logger  logging.Logger

	mu       sync.RWMutex
	token    string
	username string
}

func New(cfg config.Config, logger logging.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := NewWithBaseURL(cfg.APIBaseURL(), "")
	c.http.Timeout = cfg.APITimeout()
	if logger != nil {
		c.logger = logger.With(logging.F("component", "client"))
	}
	return c, nil
}

func NewWithBaseURL(baseURL, token string) *Client {
	jar := newSessionJar()
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		jar:     jar,
		logger:  logging.Nop(),
		http: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", req, false, &resp); err != nil {
		return nil, err
	}
	name := firstNonEmpty(resp.User, resp.Username, resp.Name, usernameFromToken(resp.Token), username)
	c.mu.Lock()
	c.token = resp.Token
	c.username = name
	c.mu.Unlock()
	resp.User = name
	return &resp, nil
}

func (c *Client) SendEmailVerification(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/send_email_key", EmailKeyRequest{Email: email}, false, nil)
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/register_user", req, false, nil)
}

// Logout always forgets local credentials, even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/login_protected/logout", nil, true, nil)
	c.clearCredentials()
	return err
}

func (c *Client) CheckSession(ctx context.Context) (*SessionStatus, error) {
	var resp SessionStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/login_protected/check_session", nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.UserName() == "" {
		resp.User = c.Username()
	}
	return &resp, nil
}

func (c *Client) CreateNote(ctx context.Context, draft types.NoteDraft) error {
	if draft.AllowedUsers == nil {
		draft.AllowedUsers = []string{}
	}
	return c.doJSON(ctx, http.MethodPost, "/api/login_protected/create_note", draft, true, nil)
}

func (c *Client) DeleteNote(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/login_protected/edit_permission/%d/delete", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, true, nil)
}

func (c *Client) GetNotes(ctx context.Context, bounds types.Bounds) ([]types.Note, error) {
	var notes []types.Note
	if err := c.doJSON(ctx, http.MethodPost, "/api/view_permission/get_within_square", bounds, false, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []types.Note{}
	}
	return notes, nil
}

func (c *Client) GetNoteByID(ctx context.Context, id int) (*types.Note, error) {
	var note types.Note
	path := fmt.Sprintf("/api/view_permission/get_by_id/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, false, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) GetNotesByUser(ctx context.Context, username string) ([]types.Note, error) {
	var notes []types.Note
	path := "/api/view_permission/get_by_user/" + url.PathEscape(username)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, false, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []types.Note{}
	}
	return notes, nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// Session snapshots the credentials so they can be persisted between runs.
func (c *Client) Session() *types.Session {
	c.mu.RLock()
	token, username := c.token, c.username
	c.mu.RUnlock()
	if token == "" && username == "" {
		return nil
	}
	session := &types.Session{
		Username:  username,
		Token:     token,
		ExpiresAt: expiryFromToken(token),
		CreatedAt: time.Now().UTC(),
	}
	if u, err := url.Parse(c.baseURL); err == nil {
		for _, cookie := range c.jar.Cookies(u) {
			session.Cookies = append(session.Cookies, types.Cookie{
				Name:    cookie.Name,
				Value:   cookie.Value,
				Path:    cookie.Path,
				Expires: cookie.Expires,
			})
		}
	}
	return session
}

func (c *Client) Restore(session *types.Session) {
	if session == nil {
		c.clearCredentials()
		return
	}
	c.mu.Lock()
	c.token = session.Token
	c.username = session.Username
	c.mu.Unlock()
	if len(session.Cookies) == 0 {
		return
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	cookies := make([]*http.Cookie, 0, len(session.Cookies))
	for _, cookie := range session.Cookies {
		cookies = append(cookies, &http.Cookie{
			Name:    cookie.Name,
			Value:   cookie.Value,
			Path:    cookie.Path,
			Expires: cookie.Expires,
		})
	}
	c.jar.SetCookies(u, cookies)
}

func (c *Client) clearCredentials() {
	c.mu.Lock()
	c.token = ""
	c.username = ""
	c.mu.Unlock()
	c.jar.Reset()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	requestID := logging.NewRequestID()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.Token()
	if requireAuth && token == "" && !c.hasCookies() {
		return ErrNotAuthenticated
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			logging.F("method", method),
			logging.F("path", path),
			logging.F("request_id", requestID),
			logging.Err(err),
		)
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("api request",
		logging.F("method", method),
		logging.F("path", path),
		logging.F("request_id", requestID),
		logging.F("status", resp.StatusCode),
		logging.F("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) hasCookies() bool {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return len(c.jar.Cookies(u)) > 0
}

// sessionJar lets logout drop every cookie while requests are in flight. The
// http.Client keeps the same jar for its whole life.
type sessionJar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
}

func newSessionJar() *sessionJar {
	inner, _ := cookiejar.New(nil)
	return &sessionJar{inner: inner}
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	inner := j.inner
	j.mu.RUnlock()
	inner.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	inner := j.inner
	j.mu.RUnlock()
	return inner.Cookies(u)
}

func (j *sessionJar) Reset() {
	inner, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// usernameFromToken reads the name claim without verifying the signature;
// the server is the only party that validates tokens.
func usernameFromToken(token string) string {
	claims := parseClaims(token)
	if claims == nil {
		return ""
	}
	name, _ := claims["name"].(string)
	return name
}

func expiryFromToken(token string) time.Time {
	claims := parseClaims(token)
	if claims == nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time.UTC()
}

func parseClaims(token string) jwt.MapClaims {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return ""
}
