package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strideify/auth-service/accounts"
	fakeaccountrepo "github.com/strideify/auth-service/accounts/repofake"
	"github.com/strideify/auth-service/auth"
	"github.com/strideify/auth-service/internal/config"
	"github.com/strideify/auth-service/server"
	"github.com/strideify/auth-service/token"
)

const (
	testUsername = "alice"
	testPassword = "secret1"
)

func setupTestServer(t *testing.T) *server.Server {
	t.Helper()

	codec, err := token.NewCodec([]byte("test-signing-secret"), time.Hour)
	require.NoError(t, err)

	authService, err := auth.NewAuthService(auth.Repos{
		Accounts: fakeaccountrepo.NewFakeAccountRepo(),
	}, codec)
	require.NoError(t, err)

	return server.New(&config.Config{Env: "TEST", AppName: "Strideify Auth"}, authService)
}

func doJSON(t *testing.T, srv *server.Server, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func credentialsBody(username, password string) string {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	return string(body)
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	resp := http.Response{Header: rr.Header()}
	for _, c := range resp.Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	t.Fatal("no jwt cookie in response")
	return nil
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestSignupIssuesSessionCookie(t *testing.T) {
	srv := setupTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/signup", credentialsBody(testUsername, testPassword), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "success", body["message"])

	cookie := sessionCookie(t, rr)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestSignupDuplicateUsername(t *testing.T) {
	srv := setupTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/signup", credentialsBody(testUsername, testPassword), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, srv, http.MethodPost, "/signup", credentialsBody(testUsername, "other"), nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "already_exists", errorCode(t, rr))
}

func TestSignupMalformedBody(t *testing.T) {
	srv := setupTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/signup", "{not json", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rr))
}

func TestLoginRotationFlow(t *testing.T) {
	srv := setupTestServer(t)

	signupResp := doJSON(t, srv, http.MethodPost, "/signup", credentialsBody(testUsername, testPassword), nil)
	require.Equal(t, http.StatusOK, signupResp.Code)
	cookieA := sessionCookie(t, signupResp)

	loginResp := doJSON(t, srv, http.MethodPost, "/login", credentialsBody(testUsername, testPassword), nil)
	require.Equal(t, http.StatusOK, loginResp.Code)
	cookieB := sessionCookie(t, loginResp)
	require.NotEqual(t, cookieA.Value, cookieB.Value)

	// The pre-login cookie is superseded.
	rr := doJSON(t, srv, http.MethodGet, "/session", "", cookieA)
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "superseded", errorCode(t, rr))

	// The rotated cookie authenticates.
	rr = doJSON(t, srv, http.MethodGet, "/session", "", cookieB)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, testUsername, body["username"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	srv := setupTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/signup", credentialsBody(testUsername, testPassword), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	wrongPassword := doJSON(t, srv, http.MethodPost, "/login", credentialsBody(testUsername, "wrong"), nil)
	unknownUser := doJSON(t, srv, http.MethodPost, "/login", credentialsBody("nobody", testPassword), nil)

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

// failingUpdateRepo fails every token update to exercise storage errors.
type failingUpdateRepo struct {
	accounts.Repo
}

func (r failingUpdateRepo) UpdateToken(context.Context, string, string) error {
	return errors.New("connection reset")
}

func TestLoginStorageFailureHasOwnOutcomeCode(t *testing.T) {
	codec, err := token.NewCodec([]byte("test-signing-secret"), time.Hour)
	require.NoError(t, err)

	repo := fakeaccountrepo.NewFakeAccountRepo()

	seedService, err := auth.NewAuthService(auth.Repos{Accounts: repo}, codec)
	require.NoError(t, err)
	_, err = seedService.Register(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	authService, err := auth.NewAuthService(auth.Repos{Accounts: failingUpdateRepo{repo}}, codec)
	require.NoError(t, err)
	srv := server.New(&config.Config{Env: "TEST", AppName: "Strideify Auth"}, authService)

	rr := doJSON(t, srv, http.MethodPost, "/login", credentialsBody(testUsername, testPassword), nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "persistence_failure", errorCode(t, rr))

	// No internal detail leaks into the response body.
	assert.NotContains(t, rr.Body.String(), "connection reset")
}

func TestSessionWithoutCookie(t *testing.T) {
	srv := setupTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rr))
}

func TestSessionWithGarbageCookie(t *testing.T) {
	srv := setupTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/session", "", &http.Cookie{Name: "jwt", Value: "garbage"})
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rr))
}
