package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, *CredentialStore, *Sessions) {
	t.Helper()
	creds := NewCredentialStore(&fakeCredentials{})
	sessions, _ := newTestSessions(t)
	return NewHandler(creds, sessions, zap.NewNop()), creds, sessions
}

func postJSON(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestLoginWithoutCredential(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := postJSON(h.Login, "/password_authentication", `{"password":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid password")
}

func TestLoginIssuesToken(t *testing.T) {
	h, creds, sessions := newTestHandler(t)
	require.NoError(t, creds.SetOrReplace(context.Background(), "", "pw"))

	rec := postJSON(h.Login, "/password_authentication", `{"password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Authenticated", resp.Message)
	_, err := sessions.Check(context.Background(), resp.Token)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, resp.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginWrongPassword(t *testing.T) {
	h, creds, _ := newTestHandler(t)
	require.NoError(t, creds.SetOrReplace(context.Background(), "", "pw"))

	rec := postJSON(h.Login, "/password_authentication", `{"password":"nope"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginBadBody(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := postJSON(h.Login, "/password_authentication", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePasswordFlow(t *testing.T) {
	h, creds, _ := newTestHandler(t)
	ctx := context.Background()

	rec := postJSON(h.UpdatePassword, "/update_password", `{"old_password":"","new_password":"first"}`)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = postJSON(h.UpdatePassword, "/update_password", `{"old_password":"bad","new_password":"second"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Old password does not match")

	ok, err := creds.Authenticate(ctx, "first")
	require.NoError(t, err)
	assert.True(t, ok)

	rec = postJSON(h.UpdatePassword, "/update_password", `{"old_password":"first","new_password":"second"}`)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	ok, err = creds.Authenticate(ctx, "second")
	require.NoError(t, err)
	assert.True(t, ok)

	rec = postJSON(h.UpdatePassword, "/update_password", `{"old_password":"second","new_password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePasswordTooLong(t *testing.T) {
	h, creds, _ := newTestHandler(t)
	ctx := context.Background()
	require.NoError(t, creds.SetOrReplace(ctx, "", "pw"))

	long := strings.Repeat("a", 80)
	rec := postJSON(h.UpdatePassword, "/update_password", `{"old_password":"pw","new_password":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 72 bytes")

	ok, err := creds.Authenticate(ctx, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogoutRevokesSession(t *testing.T) {
	h, _, sessions := newTestHandler(t)
	ctx := context.Background()

	token, err := sessions.Start(ctx)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, err = sessions.Check(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(req))

	req.Header.Set("Authorization", "bearer   spaced ")
	assert.Equal(t, "spaced", TokenFromRequest(req))
}
