package http

import (
	"net/http"
	"time"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgRegistered         = "User registered successfully!"
	msgLoggedOut          = "You have been logged out!"
)

type authData struct {
	Mode     string // "login" or "register"
	Username string
	Budget   string
}

func authMode(s string) string {
	if s == "register" {
		return "register"
	}
	return "login"
}

// handleIndex shows the login/register page, or sends an authenticated
// user to the menu.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if sess := s.loadSession(r); sess != nil {
		redirect(w, r, "/expenses/new")
		return
	}

	p := page{
		Title: "Login or Register",
		Data:  authData{Mode: authMode(r.URL.Query().Get("mode")), Budget: "100"},
	}
	if r.URL.Query().Get("logged_out") == "1" {
		p.Flash = msgLoggedOut
	}
	s.render(w, r, http.StatusOK, "auth.html", p)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if errResp := ParseFormOrFail(r); errResp != nil {
		errResp.Write(w)
		return
	}
	ctx := r.Context()
	username := sanitizeInput(r.PostForm.Get("username"))
	loginPage := func(msg string) page {
		return authPage(msg, authData{Mode: "login", Username: username})
	}

	user, err := s.users.Login(ctx, username, r.PostForm.Get("password"))
	if err != nil {
		s.events.LogError(ctx, "Login failed", err, applog.ComponentAuth, applog.OpLogin,
			applog.NewFields().WithClientIP(s.detector.ExtractClientIP(r)))
		s.fail(w, r, http.StatusInternalServerError, "auth.html", loginPage("Login failed. Please try again."))
		return
	}
	if user == nil {
		s.events.LogLogin(ctx, username, 0, false)
		s.fail(w, r, http.StatusUnauthorized, "auth.html", loginPage(msgInvalidCredentials))
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.events.LogError(ctx, "Failed to issue session token", err, applog.ComponentAuth, applog.OpLogin,
			applog.NewFields().WithUser(user.ID, user.Username))
		s.fail(w, r, http.StatusInternalServerError, "auth.html", loginPage("Login failed. Please try again."))
		return
	}

	s.events.LogLogin(ctx, user.Username, user.ID, true)
	http.SetCookie(w, s.sessionCookie(r, token, s.tokens.TTL()))
	redirect(w, r, "/expenses/new")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if errResp := ParseFormOrFail(r); errResp != nil {
		errResp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentAuth)
	data := authData{
		Mode:     "register",
		Username: sanitizeInput(r.PostForm.Get("username")),
		Budget:   sanitizeInput(r.PostForm.Get("budget")),
	}

	form, err := ParseRegistrationForm(r.PostForm)
	if err == nil {
		var u core.User
		u, err = s.users.Register(ctx, form.Username, form.Password, form.Budget)
		if err == nil {
			logger.InfoContext(ctx, "User registered", applog.NewFields().
				WithOperation(applog.OpRegister).WithUser(u.ID, u.Username).ToSlice()...)
			if isHTMX(r) {
				FlashFragment(msgRegistered).Write(w)
				return
			}
			s.render(w, r, http.StatusOK, "auth.html", page{
				Title: "Login or Register",
				Flash: msgRegistered,
				Data:  authData{Mode: "login", Username: u.Username},
			})
			return
		}
	}

	if core.IsValidation(err) {
		logger.DebugContext(ctx, "Registration rejected", applog.FieldError, err)
		s.fail(w, r, http.StatusUnprocessableEntity, "auth.html", authPage(capitalize(err.Error()), data))
		return
	}
	s.events.LogError(ctx, "Registration failed", err, applog.ComponentAuth, applog.OpRegister, nil)
	s.fail(w, r, http.StatusInternalServerError, "auth.html", authPage("Registration failed. Please try again.", data))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := s.loadSession(r); sess != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).InfoContext(r.Context(), "User logged out",
			applog.NewFields().WithOperation(applog.OpLogout).WithUser(sess.UserID, sess.Username).ToSlice()...)
	}
	http.SetCookie(w, s.sessionCookie(r, "", -1))
	redirect(w, r, "/?logged_out=1")
}

// requireSession resolves the session cookie into a session in the request
// context, sending anonymous visitors to the login page.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(r)
		if sess == nil {
			redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

// loadSession returns the session carried by the request's cookie, or nil.
func (s *Server) loadSession(r *http.Request) *session.Session {
	c, err := r.Cookie(session.CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	ctx := r.Context()
	userID, err := s.tokens.Parse(c.Value)
	if err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentAuth).DebugContext(ctx,
			"Rejected session cookie", applog.FieldError, err)
		return nil
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentAuth).WarnContext(ctx,
			"Session user lookup failed", applog.FieldUserID, userID, applog.FieldError, err)
		return nil
	}
	return session.New(u)
}

// sessionCookie builds the session cookie; a negative ttl deletes it.
func (s *Server) sessionCookie(r *http.Request, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		return c
	}
	c.MaxAge = int(ttl.Seconds())
	c.Expires = s.now().Add(ttl)
	return c
}

// fail answers a form post with p.Error: a fragment for htmx, the full page
// otherwise.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, tmpl string, p page) {
	if isHTMX(r) {
		ErrorFragment(status, p.Error).Write(w)
		return
	}
	s.render(w, r, status, tmpl, p)
}

func authPage(errMsg string, data authData) page {
	return page{Title: "Login or Register", Error: errMsg, Data: data}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:] + "."
	}
	return s + "."
}
