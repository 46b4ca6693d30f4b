// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hexago/unimatch/internal/models"
	"github.com/hexago/unimatch/internal/services/credentials"
)

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", h.pageData(c))
}

// Login verifies the credentials and starts a session. Unknown email
// and wrong password produce the same response.
func (h *Handlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.accounts.CheckLogin(ctx, c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		return err
	}
	if !result.OK {
		return redirectMessage(c, "/login", messageForReason(result.Reason), "error")
	}

	key, err := h.sessions.Start(ctx, result.UserID)
	if err != nil {
		return err
	}
	if err := h.cookies.Write(c, key); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout drops the session and its anti-forgery token, clears the
// cookie and lands on the login page. Works without a session too.
func (h *Handlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if key := h.cookies.Read(c); key != "" {
		_ = h.sessions.CancelToken(ctx, key)
		if err := h.sessions.Delete(ctx, key); err != nil {
			return err
		}
	}
	h.cookies.Clear(c)

	return redirectMessage(c, "/login", "logged_out", "success")
}

// SignupStudentPage renders the student registration form.
func (h *Handlers) SignupStudentPage(c echo.Context) error {
	return c.Render(http.StatusOK, "signup_student.html", h.pageData(c))
}

// SignupStudent registers a student account.
func (h *Handlers) SignupStudent(c echo.Context) error {
	user := &models.User{
		Username:     c.FormValue("username"),
		Email:        c.FormValue("email"),
		PasswordHash: c.FormValue("password"),
		AccountType:  models.AccountTypeStudent,
		Nationality:  c.FormValue("nationality"),
		Country:      c.FormValue("country"),
		City:         c.FormValue("city"),
		Education:    c.FormValue("education"),
		StudyField:   c.FormValue("field"),
		GPA:          c.FormValue("gpa"),
		Languages:    splitList(c.FormValue("languages")),
		Needs:        splitList(c.FormValue("needs")),
	}

	return h.signup(c, "/sign-up-student", user, c.FormValue("confirmPassword"))
}

// SignupUniversityPage renders the university registration form.
func (h *Handlers) SignupUniversityPage(c echo.Context) error {
	return c.Render(http.StatusOK, "signup_university.html", h.pageData(c))
}

// SignupUniversity registers a university account, assembling the
// program list from the numbered form fields.
func (h *Handlers) SignupUniversity(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return err
	}

	user := &models.User{
		Username:     c.FormValue("username"),
		Email:        c.FormValue("email"),
		PasswordHash: c.FormValue("password"),
		AccountType:  models.AccountTypeUniversity,
		Country:      c.FormValue("country"),
		City:         c.FormValue("city"),
		MinGPA:       c.FormValue("minGPA"),
		Services:     splitList(c.FormValue("services")),
		Programs:     parsePrograms(form),
	}

	return h.signup(c, "/sign-up-university", user, c.FormValue("confirmPassword"))
}

// signup runs the shared registration checks and persists the account.
// user.PasswordHash still holds the plain-text password on the way in;
// CreateUser replaces it with the salted hash.
func (h *Handlers) signup(c echo.Context, formPath string, user *models.User, confirmed string) error {
	ctx := c.Request().Context()

	valid, err := h.accounts.ValidateEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if !valid {
		return redirectMessage(c, formPath, "registration_email_invalid", "error")
	}
	if !credentials.ValidatePassword(user.PasswordHash) {
		return redirectMessage(c, formPath, "password_policy", "error")
	}
	if strings.TrimSpace(user.PasswordHash) != strings.TrimSpace(confirmed) {
		return redirectMessage(c, formPath, "password_mismatch", "error")
	}

	if err := h.accounts.CreateUser(ctx, user); err != nil {
		return err
	}

	return redirectMessage(c, "/login", "registration_success", "success")
}
