package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Usecase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	uc, _, _ := newTestUsecase(t)
	srv := NewServer(uc, Opts{
		Logger:     zap.NewNop(),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 72 * time.Hour,
	})
	r := gin.New()
	srv.Register(r.Group("/api/v1/users"), RequireAuth(uc))
	return r, uc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/users/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "fullName": "Alice", "password": "correct horse",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/v1/users/login", map[string]string{
		"username": "alice", "password": "correct horse",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestLoginSetsHardenedCookies(t *testing.T) {
	r, _ := newTestRouter(t)
	w := registerAndLogin(t, r)

	// httpOnly and Secure are unconditional: no Opts field can turn
	// them off, so a default-config deployment still gets both.
	for _, name := range []string{accessCookie, refreshCookie} {
		c := cookieByName(t, w, name)
		require.True(t, c.HttpOnly, "%s must be httpOnly", name)
		require.True(t, c.Secure, "%s must be Secure", name)
		require.NotEmpty(t, c.Value)
	}

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
			User         struct {
				Username     string `json:"username"`
				PasswordHash string `json:"passwordHash"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)
	require.Equal(t, "alice", env.Data.User.Username)
	require.Empty(t, env.Data.User.PasswordHash, "hash must never leave the server")
}

func TestRefreshAndLogoutCookiesAlsoHardened(t *testing.T) {
	r, _ := newTestRouter(t)
	login := registerAndLogin(t, r)
	access := cookieByName(t, login, accessCookie)
	refresh := cookieByName(t, login, refreshCookie)

	rotated := doJSON(t, r, http.MethodPost, "/api/v1/users/refresh-token", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, rotated.Code)
	logout := doJSON(t, r, http.MethodPost, "/api/v1/users/logout", nil, []*http.Cookie{access})
	require.Equal(t, http.StatusOK, logout.Code)

	// every write to the session cookies carries the flags, including
	// the clearing writes on logout
	for _, w := range []*httptest.ResponseRecorder{rotated, logout} {
		for _, name := range []string{accessCookie, refreshCookie} {
			c := cookieByName(t, w, name)
			require.True(t, c.Secure, "%s must be Secure", name)
			require.True(t, c.HttpOnly, "%s must be httpOnly", name)
		}
	}
}

func TestLoginUnknownVsWrongPasswordStatus(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/login", map[string]string{
		"username": "nobody", "password": "correct horse",
	}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/users/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshFromCookie(t *testing.T) {
	r, _ := newTestRouter(t)
	login := registerAndLogin(t, r)
	refresh := cookieByName(t, login, refreshCookie)

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/refresh-token", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := cookieByName(t, w, refreshCookie)
	require.NotEqual(t, refresh.Value, rotated.Value)

	// the replaced cookie is now refused and the session cookies are cleared
	w = doJSON(t, r, http.MethodPost, "/api/v1/users/refresh-token", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, -1, cookieByName(t, w, refreshCookie).MaxAge)
}

func TestRefreshFromBodyForNonBrowserClients(t *testing.T) {
	r, _ := newTestRouter(t)
	login := registerAndLogin(t, r)

	var env struct {
		Data struct {
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &env))

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/refresh-token",
		map[string]string{"refreshToken": env.Data.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshWithoutTokenIsUnauthorized(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/users/refresh-token", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsCookiesAndKillsRefresh(t *testing.T) {
	r, _ := newTestRouter(t)
	login := registerAndLogin(t, r)
	access := cookieByName(t, login, accessCookie)
	refresh := cookieByName(t, login, refreshCookie)

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/logout", nil, []*http.Cookie{access})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, -1, cookieByName(t, w, accessCookie).MaxAge)
	require.Equal(t, -1, cookieByName(t, w, refreshCookie).MaxAge)

	w = doJSON(t, r, http.MethodPost, "/api/v1/users/refresh-token", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/users/logout", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/users/change-password",
		map[string]string{"oldPassword": "a", "newPassword": "b"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePasswordEndToEnd(t *testing.T) {
	r, _ := newTestRouter(t)
	login := registerAndLogin(t, r)
	access := cookieByName(t, login, accessCookie)

	w := doJSON(t, r, http.MethodPut, "/api/v1/users/change-password",
		map[string]string{"oldPassword": "wrong", "newPassword": "brand new pass"}, []*http.Cookie{access})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/users/change-password",
		map[string]string{"oldPassword": "correct horse", "newPassword": "brand new pass"}, []*http.Cookie{access})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "alice", "password": "brand new pass"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBearerHeaderAlsoAuthenticates(t *testing.T) {
	r, _ := newTestRouter(t)
	login := registerAndLogin(t, r)

	var env struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &env))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+env.Data.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
