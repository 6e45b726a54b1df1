// ABOUTME: Tests for auth, catalog and learning workflows
// ABOUTME: Runs the real client against httptest where the wire matters, fakes elsewhere

package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/learnctl/internal/client"
	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/notify"
	"github.com/markalston/learnctl/internal/storage"
	"github.com/markalston/learnctl/internal/store"
	"github.com/markalston/learnctl/internal/validation"
)

func newStore(t *testing.T, opts ...store.Option) (*store.Store, *storage.MemoryKV) {
	t.Helper()
	secure := storage.NewMemoryKV()
	st := store.New(secure, storage.NewMemoryKV(), opts...)
	require.NoError(t, st.InitializeSession(context.Background()))
	return st, secure
}

func envelope(w http.ResponseWriter, status int, data any, success bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"statusCode": status, "data": data, "success": success, "message": ""})
}

func TestAuthService_LoginPersistsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, models.AuthData{
			User:         models.User{ID: "u1", Username: "abc"},
			AccessToken:  "A1",
			RefreshToken: "R1",
		}, true)
	}))
	defer server.Close()

	st, secure := newStore(t)
	c := client.New(server.URL, client.WithTokenStore(st))
	auth := NewAuthService(c, st, nil)

	user, err := auth.Login(context.Background(), "abc", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "abc", user.Username)

	sess := st.Session()
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "A1", sess.AccessToken)
	assert.Equal(t, "R1", sess.RefreshToken)

	var stored string
	require.NoError(t, storage.GetJSON(secure, "auth_token", &stored))
	assert.Equal(t, "A1", stored)
}

func TestAuthService_RefreshFlowUpdatesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users/refresh-token":
			envelope(w, http.StatusOK, models.TokenPair{AccessToken: "A2", RefreshToken: "R2"}, true)
		case r.Header.Get("Authorization") == "Bearer A2":
			envelope(w, http.StatusOK, models.User{ID: "u1", Username: "abc", Email: "new@example.com"}, true)
		default:
			envelope(w, http.StatusUnauthorized, nil, false)
		}
	}))
	defer server.Close()

	st, _ := newStore(t)
	require.NoError(t, st.SetSession(models.User{ID: "u1", Username: "abc"}, "A1", "R1"))
	auth := NewAuthService(client.New(server.URL, client.WithTokenStore(st)), st, nil)

	user, err := auth.RefreshProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	sess := st.Session()
	assert.Equal(t, "A2", sess.AccessToken)
	assert.Equal(t, "R2", sess.RefreshToken)
	assert.Equal(t, "new@example.com", sess.User.Email)
}

func TestAuthService_RefreshFailureLogsOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusUnauthorized, nil, false)
	}))
	defer server.Close()

	st, _ := newStore(t)
	require.NoError(t, st.SetSession(models.User{ID: "u1"}, "A1", "R1"))
	auth := NewAuthService(client.New(server.URL, client.WithTokenStore(st)), st, nil)

	_, err := auth.RefreshProfile(context.Background())
	assert.True(t, client.IsAuth(err))
	assert.False(t, st.Session().Authenticated)
	assert.Nil(t, st.Session().User)
}

// fakeAuthAPI records calls without a network
type fakeAuthAPI struct {
	loginCalls  int
	logoutErr   error
	logoutCalls int
	register    *models.AuthData
	avatarName  string
	avatarBody  string
}

func (f *fakeAuthAPI) Login(context.Context, string, string) (*models.AuthData, error) {
	f.loginCalls++
	return &models.AuthData{User: models.User{Username: "abc"}, AccessToken: "A1", RefreshToken: "R1"}, nil
}

func (f *fakeAuthAPI) Register(_ context.Context, username, email, _ string) (*models.AuthData, error) {
	if f.register != nil {
		return f.register, nil
	}
	return &models.AuthData{User: models.User{Username: username, Email: email}}, nil
}

func (f *fakeAuthAPI) CurrentUser(context.Context) (*models.User, error) {
	return &models.User{Username: "abc"}, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuthAPI) UpdateAvatar(_ context.Context, name string, r io.Reader) (*models.User, error) {
	f.avatarName = name
	b, _ := io.ReadAll(r)
	f.avatarBody = string(b)
	return &models.User{Username: "abc", Avatar: &models.Avatar{URL: "https://cdn/x.png"}}, nil
}

func TestAuthService_LoginValidationNeverCallsAPI(t *testing.T) {
	api := &fakeAuthAPI{}
	st, _ := newStore(t)
	auth := NewAuthService(api, st, nil)

	_, err := auth.Login(context.Background(), "AB", "1")

	assert.ErrorIs(t, err, validation.ErrValidation)
	assert.Zero(t, api.loginCalls)
	assert.False(t, st.Session().Authenticated)
}

func TestAuthService_RegisterWithoutTokensNeedsLogin(t *testing.T) {
	st, _ := newStore(t)
	auth := NewAuthService(&fakeAuthAPI{}, st, nil)

	user, signedIn, err := auth.Register(context.Background(), validation.RegisterInput{
		Username: "newbie", Email: "NEW@Example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.False(t, signedIn)
	assert.Equal(t, "new@example.com", user.Email)
	assert.False(t, st.Session().Authenticated)
}

func TestAuthService_RegisterWithTokensSignsIn(t *testing.T) {
	st, _ := newStore(t)
	api := &fakeAuthAPI{register: &models.AuthData{User: models.User{Username: "newbie"}, AccessToken: "A1", RefreshToken: "R1"}}
	auth := NewAuthService(api, st, nil)

	_, signedIn, err := auth.Register(context.Background(), validation.RegisterInput{
		Username: "newbie", Email: "n@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.True(t, signedIn)
	assert.True(t, st.Session().Authenticated)
}

func TestAuthService_LogoutClearsEvenWhenRemoteFails(t *testing.T) {
	st, secure := newStore(t)
	require.NoError(t, st.SetSession(models.User{Username: "abc"}, "A1", "R1"))
	api := &fakeAuthAPI{logoutErr: errors.New("offline")}
	auth := NewAuthService(api, st, nil)

	require.NoError(t, auth.Logout(context.Background()))

	assert.Equal(t, 1, api.logoutCalls)
	assert.False(t, st.Session().Authenticated)
	assert.False(t, secure.Has("auth_token"))
}

func TestAuthService_LogoutWithoutSessionSkipsRemote(t *testing.T) {
	st, _ := newStore(t)
	api := &fakeAuthAPI{}
	require.NoError(t, NewAuthService(api, st, nil).Logout(context.Background()))
	assert.Zero(t, api.logoutCalls)
}

func TestAuthService_UpdateAvatar(t *testing.T) {
	st, _ := newStore(t)
	require.NoError(t, st.SetSession(models.User{Username: "abc"}, "A1", "R1"))
	api := &fakeAuthAPI{}
	auth := NewAuthService(api, st, nil)

	path := filepath.Join(t.TempDir(), "face.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0600))

	user, err := auth.UpdateAvatar(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "face.png", api.avatarName)
	assert.Equal(t, "png", api.avatarBody)
	assert.Equal(t, "https://cdn/x.png", user.Avatar.URL)
	assert.Equal(t, "https://cdn/x.png", st.Session().User.Avatar.URL)
	assert.Equal(t, "A1", st.Session().AccessToken)
}

func TestAuthService_UpdateAvatarRequiresSession(t *testing.T) {
	st, _ := newStore(t)
	_, err := NewAuthService(&fakeAuthAPI{}, st, nil).UpdateAvatar(context.Background(), "x.png")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

// fakeCatalogAPI serves a fixed catalog
type fakeCatalogAPI struct {
	courses []models.Course
	err     error
}

func (f *fakeCatalogAPI) RandomCourses(context.Context, int) ([]models.Course, error) {
	return f.courses, f.err
}

func (f *fakeCatalogAPI) Instructors(_ context.Context, ids []int) map[int]models.Instructor {
	out := make(map[int]models.Instructor)
	for _, id := range ids {
		if id%2 == 1 {
			out[id] = models.Instructor{ID: id * 100}
		}
	}
	return out
}

func TestCatalogService_RefreshDedupesAndStores(t *testing.T) {
	st, _ := newStore(t)
	api := &fakeCatalogAPI{courses: []models.Course{
		{ID: 1, Title: "Go", Category: "dev"},
		{ID: 2, Title: "Rust", Category: "dev"},
		{ID: 1, Title: "Go", Category: "dev"},
	}}
	svc := NewCatalogService(api, st, nil)

	courses, err := svc.Refresh(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	course, instructor, ok := svc.Course(1)
	require.True(t, ok)
	assert.Equal(t, "Go", course.Title)
	require.NotNil(t, instructor)
	assert.Equal(t, 100, instructor.ID)

	_, instructor, ok = svc.Course(2)
	assert.True(t, ok)
	assert.Nil(t, instructor)

	_, _, ok = svc.Course(3)
	assert.False(t, ok)
	assert.Len(t, st.State().Recommended, 2)
}

func TestCatalogService_RefreshFailureKeepsCatalog(t *testing.T) {
	st, _ := newStore(t)
	require.NoError(t, st.SetCatalog([]models.Course{{ID: 9}}, nil))
	svc := NewCatalogService(&fakeCatalogAPI{err: client.ErrTransient}, st, nil)

	_, err := svc.Refresh(context.Background(), 10)
	assert.ErrorIs(t, err, client.ErrTransient)
	assert.Len(t, st.State().Catalog, 1)
}

func TestCatalogService_SearchRecordsHistory(t *testing.T) {
	st, _ := newStore(t)
	require.NoError(t, st.SetCatalog([]models.Course{{ID: 1, Title: "Go Basics", Category: "dev"}}, nil))
	svc := NewCatalogService(&fakeCatalogAPI{}, st, nil)

	assert.Len(t, svc.Search("go", ""), 1)
	assert.Len(t, svc.Search("  ", ""), 1)
	assert.Equal(t, []string{"go"}, st.State().SearchHistory)
}

func TestLearningService(t *testing.T) {
	rec := &notify.Recorder{}
	st, _ := newStore(t, store.WithNotifier(rec))
	require.NoError(t, st.SetCatalog([]models.Course{{ID: 1, Title: "Go"}}, nil))
	svc := NewLearningService(st, nil)

	_, err := svc.ToggleBookmark(42)
	assert.ErrorIs(t, err, ErrUnknownCourse)
	_, err = svc.Enroll(42)
	assert.ErrorIs(t, err, ErrUnknownCourse)

	assert.ErrorIs(t, svc.SetProgress(1, 10), ErrNotEnrolled)

	added, err := svc.Enroll(1)
	require.NoError(t, err)
	assert.True(t, added)

	p, err := svc.Advance(1, 60)
	require.NoError(t, err)
	assert.Equal(t, 60, p)
	p, err = svc.Advance(1, 60)
	require.NoError(t, err)
	assert.Equal(t, 100, p)
	assert.Equal(t, 1, rec.Count(notify.KindCompleted))

	assert.ErrorIs(t, svc.SetProgress(1, 120), store.ErrInvalidProgress)

	added, err = svc.Enroll(1)
	require.NoError(t, err)
	assert.False(t, added)
	progress, _ := st.Progress(1)
	assert.Equal(t, 100, progress)
}

func TestLearningService_PersistenceFailureIsNotFatal(t *testing.T) {
	general := storage.NewMemoryKV()
	st := store.New(storage.NewMemoryKV(), general)
	require.NoError(t, st.SetCatalog([]models.Course{{ID: 1}}, nil))
	general.SetFailure(errors.New("read-only filesystem"))
	svc := NewLearningService(st, nil)

	bookmarked, err := svc.ToggleBookmark(1)
	assert.NoError(t, err)
	assert.True(t, bookmarked)
	assert.True(t, st.IsBookmarked(1))
}
