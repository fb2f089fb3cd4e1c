package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"geonotes/internal/types"
)

func TestClientGetNotesSendsBounds(t *testing.T) {
	var seen types.Bounds
	var seenMethod, seenPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenMethod = r.Method
		seenPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&seen)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"parent_id":0,"user_id":"alice","text":"hi","lattitude":1.5,"longitude":2.5}]`))
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "")
	notes, err := c.GetNotes(context.Background(), types.Bounds{North: 2, South: 1, East: 4, West: 3})
	if err != nil {
		t.Fatalf("GetNotes: %v", err)
	}
	if seenMethod != http.MethodPost || seenPath != "/api/view_permission/get_within_square" {
		t.Fatalf("unexpected request %s %s", seenMethod, seenPath)
	}
	if seen.North != 2 || seen.West != 3 {
		t.Fatalf("unexpected bounds body: %#v", seen)
	}
	if len(notes) != 1 || notes[0].Latitude != 1.5 || notes[0].UserID != "alice" {
		t.Fatalf("unexpected notes: %#v", notes)
	}
}

func TestClientGetNotesNullIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer server.Close()

	notes, err := NewWithBaseURL(server.URL, "").GetNotes(context.Background(), types.Bounds{})
	if err != nil {
		t.Fatalf("GetNotes: %v", err)
	}
	if notes == nil || len(notes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", notes)
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Note does not belong to user or does not exist"}`))
	}))
	defer server.Close()

	err := NewWithBaseURL(server.URL, "tok").DeleteNote(context.Background(), 9)
	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected api error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Note does not belong to user or does not exist" {
		t.Fatalf("unexpected api error: %#v", apiErr)
	}
}

func TestClientProtectedCallsRequireCredentials(t *testing.T) {
	c := NewWithBaseURL("http://127.0.0.1:1", "")
	if err := c.CreateNote(context.Background(), types.NoteDraft{Text: "x"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestClientSendsBearerAndRequestID(t *testing.T) {
	var auth, requestID string
	var body types.NoteDraft
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"message":"Note added successfully"}`))
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "tok")
	if err := c.CreateNote(context.Background(), types.NewReplyDraft(4, "reply")); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if auth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if requestID == "" {
		t.Fatalf("expected request id header")
	}
	if body.ParentID != 4 || body.Public || body.AllowedUsers == nil {
		t.Fatalf("unexpected reply body %#v", body)
	}
}

func TestClientSessionRoundTripKeepsCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "cookie-token", Path: "/"})
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"user":"alice"}`))
		case "/api/login_protected/check_session":
			if cookie, err := r.Cookie("jwt"); err != nil || cookie.Value != "cookie-token" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}
			_, _ = w.Write([]byte(`{"username":"alice"}`))
		}
	}))
	defer server.Close()

	first := NewWithBaseURL(server.URL, "")
	if _, err := first.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	session := first.Session()
	if session == nil || len(session.Cookies) != 1 {
		t.Fatalf("expected cookie in session, got %#v", session)
	}

	second := NewWithBaseURL(server.URL, "")
	second.Restore(session)
	status, err := second.CheckSession(context.Background())
	if err != nil {
		t.Fatalf("CheckSession: %v", err)
	}
	if status.UserName() != "alice" {
		t.Fatalf("unexpected user %q", status.UserName())
	}
}

func TestLogoutDuringFetchesDropsCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "cookie-token", Path: "/"})
			_, _ = w.Write([]byte(`{"user":"alice"}`))
		case "/api/view_permission/get_within_square":
			_, _ = w.Write([]byte(`[]`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "")
	ctx := context.Background()
	if _, err := c.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetNotes(ctx, types.Bounds{North: 1, South: 0, East: 1, West: 0})
		}()
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	wg.Wait()

	if c.hasCookies() || c.Token() != "" || c.Username() != "" {
		t.Fatalf("expected credentials cleared")
	}
}
