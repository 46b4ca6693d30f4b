// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexago/unimatch/internal/config"
	"github.com/hexago/unimatch/internal/handlers"
	"github.com/hexago/unimatch/internal/i18n"
	"github.com/hexago/unimatch/internal/repository"
	"github.com/hexago/unimatch/internal/services/account"
	"github.com/hexago/unimatch/internal/services/mailer"
	"github.com/hexago/unimatch/internal/services/matching"
	"github.com/hexago/unimatch/internal/services/session"
	"github.com/hexago/unimatch/internal/testutil"
	"github.com/hexago/unimatch/internal/view"
)

type testApp struct {
	echo     *echo.Echo
	repo     *repository.Repository
	accounts *account.Service
	sessions *session.Service
	cookies  *handlers.SessionCookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	require.NoError(t, i18n.Init())

	_, repo := testutil.NewTestDB(t)

	authCfg := &config.AuthConfig{
		SessionTTL:    session.DefaultTTL,
		CookieName:    "session_key",
		CookieHashKey: "test-hash-key-test-hash-key-1234",
	}
	smtpCfg := &config.SMTPConfig{}

	accounts := account.NewService(repo)
	sessions := session.NewService(repo, authCfg.SessionTTL)
	matches := matching.NewService(repo, "./does-not-exist.json")
	mail := mailer.NewService(smtpCfg, "http://localhost:8000")
	cookies := handlers.NewSessionCookie(authCfg)

	e := echo.New()
	renderer, err := view.New()
	require.NoError(t, err)
	e.Renderer = renderer

	h := handlers.New(repo, accounts, sessions, matches, mail, cookies)
	h.Register(e)

	return &testApp{echo: e, repo: repo, accounts: accounts, sessions: sessions, cookies: cookies}
}

func (app *testApp) do(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)
	return rec
}

// sessionCookie encodes a session key the way the login handler does.
func (app *testApp) sessionCookie(t *testing.T, key string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	c := app.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, app.cookies.Write(c, key))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestLoginSuccess(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestStudent(t, app.repo, "alice", "alice@example.com")

	rec := app.do(http.MethodPost, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"Passw0rd!alice"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.NotEmpty(t, rec.Result().Cookies())

	dashboard := app.do(http.MethodGet, "/dashboard", nil, rec.Result().Cookies()[0])
	assert.Equal(t, http.StatusOK, dashboard.Code)
	assert.Contains(t, dashboard.Body.String(), "Welcome, alice")
}

func TestLoginFailure(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestStudent(t, app.repo, "alice", "alice@example.com")

	rec := app.do(http.MethodPost, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"Wr0ng-Pass!"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/login?"), location)
	assert.Contains(t, location, url.QueryEscape("Invalid email or password."))
	assert.Contains(t, location, "type=error")
}

func TestDashboardWithoutSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/dashboard", nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login?"))
}

func TestDashboardWithStaleSession(t *testing.T) {
	app := newTestApp(t)

	cookie := app.sessionCookie(t, "no-such-session")
	rec := app.do(http.MethodGet, "/dashboard", nil, cookie)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, url.QueryEscape("Your session has expired"))
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	user := testutil.NewTestStudent(t, app.repo, "alice", "alice@example.com")

	key, err := app.sessions.Start(t.Context(), user.ID)
	require.NoError(t, err)

	rec := app.do(http.MethodGet, "/logout", nil, app.sessionCookie(t, key))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape("You have been logged out."))

	_, err = app.sessions.Get(t.Context(), key)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSignupStudent(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/sign-up-student", url.Values{
		"username":        {"bob"},
		"email":           {"bob@example.com"},
		"password":        {"Abc123!xyz"},
		"confirmPassword": {"Abc123!xyz"},
		"country":         {"France"},
		"city":            {"Lyon"},
		"languages":       {"French, English , "},
		"needs":           {"Scholarship"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Registration successful."))

	user, err := app.repo.GetUserByEmail(t.Context(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.NotEqual(t, "Abc123!xyz", user.PasswordHash)
	assert.Equal(t, []string{"French", "English"}, []string(user.Languages))
}

func TestSignupStudentDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestStudent(t, app.repo, "alice", "alice@example.com")

	rec := app.do(http.MethodPost, "/sign-up-student", url.Values{
		"username":        {"other"},
		"email":           {"alice@example.com"},
		"password":        {"Abc123!xyz"},
		"confirmPassword": {"Abc123!xyz"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/sign-up-student?"), location)
	assert.Contains(t, location, url.QueryEscape("Invalid or already registered email address."))
}

func TestSignupStudentWeakPassword(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/sign-up-student", url.Values{
		"username":        {"bob"},
		"email":           {"bob@example.com"},
		"password":        {"weak"},
		"confirmPassword": {"weak"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Password must be at least 8 characters"))
}

func TestSignupUniversityParsesPrograms(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/sign-up-university", url.Values{
		"username":        {"tum"},
		"email":           {"tum@example.com"},
		"password":        {"Abc123!xyz"},
		"confirmPassword": {"Abc123!xyz"},
		"country":         {"Germany"},
		"minGPA":          {"7.5"},
		"services":        {"Housing, Visa support"},
		"program0":        {"MSc Informatics"},
		"field0":          {"Computer Science"},
		"languages0":      {"English, German"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)

	user, err := app.repo.GetUserByEmail(t.Context(), "tum@example.com")
	require.NoError(t, err)
	assert.Equal(t, "University", user.AccountType)
	require.Len(t, user.Programs, 1)
	assert.Equal(t, "MSc Informatics", user.Programs[0].Name)
	assert.Equal(t, "Computer Science", user.Programs[0].Field)
	assert.Equal(t, []string{"English", "German"}, user.Programs[0].Languages)
}

func TestResetPasswordRequestUnknownEmail(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/reset-password", url.Values{
		"email": {"nobody@example.com"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Invalid or not registered email address."))
}

func TestResetPasswordFlow(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestStudent(t, app.repo, "alice", "alice@example.com")

	rec := app.do(http.MethodPost, "/reset-password", url.Values{
		"email": {"alice@example.com"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Password reset email sent."))

	stored, err := app.repo.GetUserByEmail(t.Context(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetKey)

	page := app.do(http.MethodGet, "/update-password?key="+*stored.ResetKey, nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), *stored.ResetKey)

	submit := app.do(http.MethodPost, "/update-password", url.Values{
		"resetKey":          {*stored.ResetKey},
		"newPassword":       {"N3w-Passw0rd!"},
		"confirmedPassword": {"N3w-Passw0rd!"},
	})
	require.Equal(t, http.StatusSeeOther, submit.Code)
	assert.Contains(t, submit.Header().Get("Location"), url.QueryEscape("Password reset successful."))

	login, err := app.accounts.CheckLogin(t.Context(), "alice@example.com", "N3w-Passw0rd!")
	require.NoError(t, err)
	assert.True(t, login.OK)
}

func TestUpdatePasswordPageBadKey(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/update-password?key=bogus", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your reset link is invalid or has expired.")
}

func TestMyMatchesRequiresUniversity(t *testing.T) {
	app := newTestApp(t)
	student := testutil.NewTestStudent(t, app.repo, "alice", "alice@example.com")

	key, err := app.sessions.Start(t.Context(), student.ID)
	require.NoError(t, err)

	rec := app.do(http.MethodGet, "/my-matches", nil, app.sessionCookie(t, key))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/dashboard?"), location)
	assert.Contains(t, location, url.QueryEscape("only accessible to universities"))
}

func TestAcceptMatch(t *testing.T) {
	app := newTestApp(t)
	uni := testutil.NewTestUniversity(t, app.repo, "tum", "tum@example.com")
	student := testutil.NewTestStudent(t, app.repo, "alice", "alice@example.com")

	key, err := app.sessions.Start(t.Context(), uni.ID)
	require.NoError(t, err)
	cookie := app.sessionCookie(t, key)

	first := app.do(http.MethodPost, "/accept-match", url.Values{
		"studentEmail": {student.Email},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, first.Code)
	assert.Contains(t, first.Header().Get("Location"), url.QueryEscape("successfully accepted"))

	second := app.do(http.MethodPost, "/accept-match", url.Values{
		"studentEmail": {student.Email},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, second.Code)
	location := second.Header().Get("Location")
	assert.Contains(t, location, url.QueryEscape("already been accepted"))
	assert.Contains(t, location, "type=info")

	stored, err := app.repo.GetUserByEmail(t.Context(), student.Email)
	require.NoError(t, err)
	require.Len(t, stored.Matches, 1)
}

func TestAcceptMatchMissingEmail(t *testing.T) {
	app := newTestApp(t)
	uni := testutil.NewTestUniversity(t, app.repo, "tum", "tum@example.com")

	key, err := app.sessions.Start(t.Context(), uni.ID)
	require.NoError(t, err)

	rec := app.do(http.MethodPost, "/accept-match", url.Values{}, app.sessionCookie(t, key))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Student email is missing."))
}

func TestRootRedirects(t *testing.T) {
	app := newTestApp(t)

	anonymous := app.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusSeeOther, anonymous.Code)
	assert.Equal(t, "/index", anonymous.Header().Get("Location"))

	user := testutil.NewTestStudent(t, app.repo, "alice", "alice@example.com")
	key, err := app.sessions.Start(t.Context(), user.ID)
	require.NoError(t, err)

	loggedIn := app.do(http.MethodGet, "/", nil, app.sessionCookie(t, key))
	require.Equal(t, http.StatusSeeOther, loggedIn.Code)
	assert.Equal(t, "/dashboard", loggedIn.Header().Get("Location"))
}
