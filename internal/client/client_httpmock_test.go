package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockBaseURL = "http://notes.test"

func newMockedClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	c := NewWithBaseURL(mockBaseURL, "")
	c.http.Transport = transport
	return c, transport
}

func signedToken(t *testing.T, name string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name": name,
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginFallsBackToTokenClaim(t *testing.T) {
	c, transport := newMockedClient(t)
	exp := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	token := signedToken(t, "carol", exp)
	transport.RegisterResponder(http.MethodPost, mockBaseURL+"/api/login",
		httpmock.NewJsonResponderOrPanic(http.StatusAccepted, map[string]string{"token": token}))

	resp, err := c.Login(context.Background(), "typed-name", "pw")
	require.NoError(t, err)
	assert.Equal(t, "carol", resp.User)
	assert.Equal(t, token, c.Token())
	assert.Equal(t, "carol", c.Username())

	session := c.Session()
	require.NotNil(t, session)
	assert.True(t, session.ExpiresAt.Equal(exp.UTC()))
}

func TestLoginPrefersResponseUser(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, mockBaseURL+"/api/login",
		httpmock.NewJsonResponderOrPanic(http.StatusAccepted, map[string]string{
			"token":    signedToken(t, "claim-name", time.Now().Add(time.Hour)),
			"username": "explicit",
		}))

	resp, err := c.Login(context.Background(), "typed", "pw")
	require.NoError(t, err)
	assert.Equal(t, "explicit", resp.User)
}

func TestLoginSurfacesServerError(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, mockBaseURL+"/api/login",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":"Invalid password"}`))

	_, err := c.Login(context.Background(), "alice", "bad")
	require.Error(t, err)
	apiErr := AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, "Invalid password", apiErr.Message)
	assert.Empty(t, c.Token())
}

func TestLogoutClearsCredentialsOnFailure(t *testing.T) {
	c, transport := newMockedClient(t)
	c.token = "tok"
	c.username = "alice"
	transport.RegisterResponder(http.MethodPost, mockBaseURL+"/api/login_protected/logout",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"error":"boom"}`))

	err := c.Logout(context.Background())
	require.Error(t, err)
	assert.Empty(t, c.Token())
	assert.Empty(t, c.Username())
	assert.Nil(t, c.Session())
}

func TestRegistrationEndpoints(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, mockBaseURL+"/api/send_email_key",
		httpmock.NewStringResponder(http.StatusOK, `{"message":"sent"}`))
	transport.RegisterResponder(http.MethodPost, mockBaseURL+"/api/register_user",
		httpmock.NewStringResponder(http.StatusOK, `{"message":"User registered successfully"}`))

	require.NoError(t, c.SendEmailVerification(context.Background(), "a@b.c"))
	require.NoError(t, c.Register(context.Background(), RegisterRequest{
		Username: "alice", Password: "pw", Email: "a@b.c", EmailKey: "123456",
	}))

	info := transport.GetCallCountInfo()
	assert.Equal(t, 1, info["POST "+mockBaseURL+"/api/send_email_key"])
	assert.Equal(t, 1, info["POST "+mockBaseURL+"/api/register_user"])
}

func TestNoteLookupEndpoints(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, mockBaseURL+"/api/view_permission/get_by_id/5",
		httpmock.NewStringResponder(http.StatusOK, `{"id":5,"user_id":"bob","text":"x","lattitude":1,"longitude":2}`))
	transport.RegisterResponder(http.MethodGet, mockBaseURL+"/api/view_permission/get_by_user/bob",
		httpmock.NewStringResponder(http.StatusAccepted, `[{"id":5,"user_id":"bob"},{"id":6,"user_id":"bob","parent_id":5}]`))

	note, err := c.GetNoteByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "bob", note.UserID)

	notes, err := c.GetNotesByUser(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, 5, notes[1].ParentID)
}

func TestRegisterCarriesBackendErrorText(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, mockBaseURL+"/api/register_user",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]string{"error": "wrong email key"}))

	err := c.Register(context.Background(), RegisterRequest{Username: "dave", Password: "pw", Email: "dave@example.com", EmailKey: "9999"})
	apiErr := AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "wrong email key", apiErr.Message)
}
