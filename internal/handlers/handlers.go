// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

// Package handlers wires the HTTP routes. Handlers stay thin: parse
// the request, call a workflow, translate its result into a redirect
// or a rendered template.
package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hexago/unimatch/internal/repository"
	"github.com/hexago/unimatch/internal/services/account"
	"github.com/hexago/unimatch/internal/services/mailer"
	"github.com/hexago/unimatch/internal/services/matching"
	"github.com/hexago/unimatch/internal/services/session"
)

// Context key set by RequireSession.
const ctxUserIDKey = "user_id"

// Handlers holds the workflow services behind the routes.
type Handlers struct {
	repo     *repository.Repository
	accounts *account.Service
	sessions *session.Service
	matches  *matching.Service
	mailer   *mailer.Service
	cookies  *SessionCookie
}

// New creates the handler set.
func New(
	repo *repository.Repository,
	accounts *account.Service,
	sessions *session.Service,
	matches *matching.Service,
	mailer *mailer.Service,
	cookies *SessionCookie,
) *Handlers {
	return &Handlers{
		repo:     repo,
		accounts: accounts,
		sessions: sessions,
		matches:  matches,
		mailer:   mailer,
		cookies:  cookies,
	}
}

// Register mounts all routes on the echo instance.
func (h *Handlers) Register(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/index", h.Index)
	e.GET("/health", h.Health)

	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)

	e.GET("/sign-up-student", h.SignupStudentPage)
	e.POST("/sign-up-student", h.SignupStudent)
	e.GET("/sign-up-university", h.SignupUniversityPage)
	e.POST("/sign-up-university", h.SignupUniversity)

	e.GET("/reset-password", h.ResetPasswordPage)
	e.POST("/reset-password", h.ResetPasswordRequest)
	e.GET("/update-password", h.UpdatePasswordPage)
	e.POST("/update-password", h.UpdatePassword)

	authed := e.Group("", h.RequireSession)
	authed.GET("/dashboard", h.Dashboard)
	authed.GET("/profile", h.Profile)
	authed.GET("/my-matches", h.MyMatches)
	authed.GET("/student-profile/:email", h.StudentProfile)
	authed.POST("/accept-match", h.AcceptMatch)
}

// Root sends logged-in users to their dashboard, everyone else to the
// landing page.
func (h *Handlers) Root(c echo.Context) error {
	if key := h.cookies.Read(c); key != "" {
		if _, err := h.sessions.Get(c.Request().Context(), key); err == nil {
			return c.Redirect(http.StatusSeeOther, "/dashboard")
		}
	}
	return c.Redirect(http.StatusSeeOther, "/index")
}

// Index renders the landing page.
func (h *Handlers) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", h.pageData(c))
}

// Health reports liveness.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Dashboard renders the landing page after login. Students also get
// the university directory and the list of universities that accepted
// them.
func (h *Handlers) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.repo.GetUserByID(ctx, userID(c))
	if err != nil {
		return err
	}

	data := h.pageData(c)
	data["User"] = user

	if user.IsStudent() {
		universities, err := h.repo.ListUniversities(ctx)
		if err != nil {
			return err
		}
		data["Universities"] = universities
	}

	return c.Render(http.StatusOK, "dashboard.html", data)
}

// Profile renders the logged-in user's own profile.
func (h *Handlers) Profile(c echo.Context) error {
	profile, err := h.accounts.GetProfile(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}

	data := h.pageData(c)
	data["Profile"] = profile
	return c.Render(http.StatusOK, "profile.html", data)
}

// StudentProfile renders a student's profile for a logged-in viewer.
func (h *Handlers) StudentProfile(c echo.Context) error {
	ctx := c.Request().Context()

	student, err := h.repo.GetUserByEmail(ctx, c.Param("email"))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "student not found")
	}
	if err != nil {
		return err
	}

	profile, err := h.accounts.GetProfile(ctx, student.ID)
	if err != nil {
		return err
	}

	data := h.pageData(c)
	data["Profile"] = profile
	return c.Render(http.StatusOK, "profile.html", data)
}
