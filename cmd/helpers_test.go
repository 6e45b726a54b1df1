// ABOUTME: Shared fixtures for command tests
// ABOUTME: Fake API server, in-memory app wiring and flag resets

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/markalston/learnctl/internal/client"
	"github.com/markalston/learnctl/internal/config"
	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/storage"
	"github.com/markalston/learnctl/internal/store"
)

var catalogFixture = []models.Course{
	{ID: 1, Title: "Go Basics", Category: "programming", Price: 10},
	{ID: 2, Title: "Watercolor", Category: "art", Price: 20},
	{ID: 3, Title: "Go Concurrency", Category: "programming", Price: 30},
}

// fakeAPI serves the endpoints commands talk to
type fakeAPI struct {
	mu          sync.Mutex
	next        int
	failCatalog bool
	logouts     int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/users/login":
		var body models.LoginRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret1" {
			envelope(w, http.StatusUnauthorized, nil, false, "Invalid user credentials")
			return
		}
		envelope(w, http.StatusOK, models.AuthData{
			User:         models.User{ID: "u1", Username: body.Username, Email: body.Username + "@example.com", Role: "USER"},
			AccessToken:  "A1",
			RefreshToken: "R1",
		}, true, "User logged in successfully")

	case "/users/current-user":
		if r.Header.Get("Authorization") != "Bearer A1" {
			envelope(w, http.StatusUnauthorized, nil, false, "Unauthorized request")
			return
		}
		envelope(w, http.StatusOK, models.User{ID: "u1", Username: "abc", Email: "fresh@example.com", Role: "USER"}, true, "")

	case "/users/refresh-token":
		envelope(w, http.StatusUnauthorized, nil, false, "Refresh token is expired")

	case "/users/logout":
		f.mu.Lock()
		f.logouts++
		f.mu.Unlock()
		envelope(w, http.StatusOK, map[string]any{}, true, "User logged out")

	case "/public/randomproducts/product/random":
		f.mu.Lock()
		fail := f.failCatalog
		c := catalogFixture[f.next%len(catalogFixture)]
		f.next++
		f.mu.Unlock()
		if fail {
			envelope(w, http.StatusInternalServerError, nil, false, "upstream down")
			return
		}
		envelope(w, http.StatusOK, c, true, "")

	case "/public/randomusers/user/random":
		envelope(w, http.StatusOK, models.Instructor{
			Name:  models.PersonName{First: "Ada", Last: "Lovelace"},
			Email: "ada@example.com",
		}, true, "")

	default:
		http.NotFound(w, r)
	}
}

func envelope(w http.ResponseWriter, status int, data any, success bool, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"statusCode": status,
		"data":       data,
		"message":    message,
		"success":    success,
	})
}

// testEnv is a wired app against a fake API
type testEnv struct {
	app *app
	api *fakeAPI
	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	resetFlags(t)

	env := &testEnv{api: &fakeAPI{}, now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	server := httptest.NewServer(env.api)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIURL:         server.URL,
		RequestTimeout: 2 * time.Second,
		FanOut:         2,
		Ephemeral:      true,
		InitTimeout:    time.Second,
		CatalogSize:    3,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(storage.NewMemoryKV(), storage.NewMemoryKV(),
		store.WithLogger(log),
		store.WithClock(func() time.Time { return env.now }),
	)
	c := client.New(server.URL,
		client.WithTokenStore(st),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
		client.WithFanOut(cfg.FanOut),
	)
	env.app = wire(cfg, st, c, log)
	return env
}

// run invokes a runner and returns its exit code and output
func (e *testEnv) run(r runner, args ...string) (int, string) {
	var buf bytes.Buffer
	code := r(context.Background(), e.app, &buf, args)
	return code, buf.String()
}

// login signs in as abc through the login command
func (e *testEnv) login(t *testing.T) {
	t.Helper()
	loginUsername, loginPassword = "abc", "secret1"
	t.Cleanup(func() { loginUsername, loginPassword = "", "" })
	if code, out := e.run(runLogin); code != exitOK {
		t.Fatalf("login failed with %d: %s", code, out)
	}
}

// seed signs in if needed and fetches the three-course catalog
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	if !e.app.store.Session().Authenticated {
		e.login(t)
	}
	if code, out := e.run(runCoursesRefresh); code != exitOK {
		t.Fatalf("refresh failed with %d: %s", code, out)
	}
}

// resetFlags clears package-level flag state before and after a test
func resetFlags(t *testing.T) {
	reset := func() {
		apiURL, dataDir, jsonOutput, ephemeral = "", "", false, false
		loginUsername, loginPassword, registerEmail, registerConfirm = "", "", "", ""
		whoamiRefresh = false
		refreshCount, courseCategory = 0, ""
	}
	reset()
	t.Cleanup(reset)
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
