package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// backend is a minimal auth server for alice / secret1 with token t1.
type backend struct {
	mu      sync.Mutex
	logouts int
	meDown  bool // GET /auth/me answers 503
}

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"success": status < 400,
		"message": message,
		"data":    data,
	})
}

var aliceJSON = map[string]any{"id": 1, "username": "alice", "email": "alice@example.com"}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{}
	authed := func(r *http.Request) bool { return r.Header.Get("Authorization") == "Bearer t1" }

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if req.Email != "alice@example.com" || req.Password != "secret1" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "Invalid email or password")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"token": "t1", "user": aliceJSON}, "")
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		down := b.meDown
		b.mu.Unlock()
		if down {
			writeEnvelope(w, http.StatusServiceUnavailable, nil, "Service unavailable")
			return
		}
		if !authed(r) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "Unauthorized")
			return
		}
		writeEnvelope(w, http.StatusOK, aliceJSON, "")
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.logouts++
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, nil, "")
	})
	mux.HandleFunc("GET /favorites", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []any{}, "")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

// testHome points config at a fresh state directory and the given backend.
func testHome(t *testing.T, apiURL string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("MOVIEDASH_HOME", home)
	t.Setenv("MOVIEDASH_API_URL", apiURL)
	t.Setenv("MOVIEDASH_LOG_FILE", filepath.Join(home, "test.log"))
	t.Setenv("MOVIEDASH_TOKEN", "")
	t.Setenv("TMDB_READ_ACCESS_TOKEN", "")
	t.Setenv("TMDB_API_KEY", "")
	return home
}

func runCmd(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out strings.Builder
	err := run(context.Background(), args, strings.NewReader(input), &out)
	return out.String(), err
}

func TestRunVersion(t *testing.T) {
	out, err := runCmd(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "moviedash dev\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestRunHelpListsCommandsAndEnv(t *testing.T) {
	out, err := runCmd(t, "", "help")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"moviedash login", "moviedash whoami", "MOVIEDASH_API_URL", "TMDB_API_KEY"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if _, err := runCmd(t, "", "frobnicate"); err == nil || !strings.Contains(err.Error(), "frobnicate") {
		t.Errorf("err = %v, want unknown command", err)
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	b, srv := newBackend(t)
	home := testHome(t, srv.URL)

	out, err := runCmd(t, "alice@example.com\nsecret1\n", "login")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as alice") {
		t.Errorf("login output = %q", out)
	}

	tokenPath := filepath.Join(home, "token")
	data, err := os.ReadFile(tokenPath)
	if err != nil || strings.TrimSpace(string(data)) != "t1" {
		t.Fatalf("token file = %q, %v", data, err)
	}
	info, err := os.Stat(tokenPath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	out, err = runCmd(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if out != "alice <alice@example.com>\n" {
		t.Errorf("whoami output = %q", out)
	}

	out, err = runCmd(t, "", "logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if out != "Logged out.\n" {
		t.Errorf("logout output = %q", out)
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token file survived logout")
	}
	b.mu.Lock()
	if b.logouts != 1 {
		t.Errorf("backend logout called %d times", b.logouts)
	}
	b.mu.Unlock()

	out, _ = runCmd(t, "", "whoami")
	if !strings.Contains(out, "Not logged in") {
		t.Errorf("whoami after logout = %q", out)
	}
	out, _ = runCmd(t, "", "logout")
	if out != "Already logged out.\n" {
		t.Errorf("second logout = %q", out)
	}
}

func TestLogoutWithUnverifiedToken(t *testing.T) {
	b, srv := newBackend(t)
	home := testHome(t, srv.URL)
	tokenPath := filepath.Join(home, "token")
	if err := os.WriteFile(tokenPath, []byte("t1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	b.mu.Lock()
	b.meDown = true
	b.mu.Unlock()

	out, err := runCmd(t, "", "logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if out != "Logged out.\n" {
		t.Errorf("logout output = %q", out)
	}
	b.mu.Lock()
	if b.logouts != 1 {
		t.Errorf("backend logout called %d times, want 1", b.logouts)
	}
	b.mu.Unlock()
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token file survived logout")
	}
}

func TestLoginRejected(t *testing.T) {
	_, srv := newBackend(t)
	home := testHome(t, srv.URL)

	_, err := runCmd(t, "alice@example.com\nwrong\n", "login")
	if err == nil || err.Error() != "Invalid email or password" {
		t.Errorf("err = %v, want backend message", err)
	}
	if _, err := os.Stat(filepath.Join(home, "token")); !os.IsNotExist(err) {
		t.Error("token written after a failed login")
	}
}

func TestLoginValidatesBeforeRequest(t *testing.T) {
	testHome(t, "http://127.0.0.1:1")
	_, err := runCmd(t, "not-an-email\nsecret1\n", "login")
	if err == nil || !strings.Contains(err.Error(), "email") {
		t.Errorf("err = %v, want email validation", err)
	}
}

func TestTokenFromEnvironment(t *testing.T) {
	_, srv := newBackend(t)
	home := testHome(t, srv.URL)
	t.Setenv("MOVIEDASH_TOKEN", "t1")

	out, err := runCmd(t, "", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "alice") {
		t.Errorf("whoami = %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, "token")); !os.IsNotExist(err) {
		t.Error("env token was written to disk")
	}
}

func TestWhoamiRejectedTokenIsDiscarded(t *testing.T) {
	_, srv := newBackend(t)
	home := testHome(t, srv.URL)
	tokenPath := filepath.Join(home, "token")
	if err := os.WriteFile(tokenPath, []byte("stale"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Not logged in") {
		t.Errorf("whoami = %q", out)
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("rejected token kept")
	}
}

func TestRunWithoutCatalogCredentialsGreets(t *testing.T) {
	_, srv := newBackend(t)
	testHome(t, srv.URL)

	out, err := runCmd(t, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "TMDB_READ_ACCESS_TOKEN") {
		t.Errorf("greeting missing setup hint: %q", out)
	}
}

func TestPromptLastLineWithoutNewline(t *testing.T) {
	var out strings.Builder
	r := bufio.NewReader(strings.NewReader("alice\r\nsecret1"))

	got, err := prompt(r, &out, "Email")
	if err != nil || got != "alice" {
		t.Fatalf("first prompt = %q, %v", got, err)
	}
	got, err = prompt(r, &out, "Password")
	if err != nil || got != "secret1" {
		t.Fatalf("second prompt = %q, %v", got, err)
	}
	if _, err := prompt(r, &out, "Extra"); err == nil {
		t.Error("expected error at EOF")
	}
	if out.String() != "Email: Password: Extra: " {
		t.Errorf("prompts = %q", out.String())
	}
}
