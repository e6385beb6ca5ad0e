// Package http serves the web UI.
//
// Form posts made by htmx are answered with a Fragment: a one-line message
// swapped into the form's result area, plus HX-Trigger events or an
// HX-Redirect.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"expensetracker/internal/core"
)

// Events the page scripts listen for.
const (
	eventExpenseCreated = "expense:created"
	eventFormReset      = "form:reset"
)

// Fragment is an htmx answer to a form post.
type Fragment struct {
	status   int
	class    string
	message  string
	events   map[string]any
	redirect string
}

// FlashFragment reports a successful action.
func FlashFragment(message string) *Fragment {
	return &Fragment{status: http.StatusOK, class: "success", message: message}
}

// ErrorFragment reports a rejected action with the given status.
func ErrorFragment(status int, message string) *Fragment {
	return &Fragment{status: status, class: "error", message: message}
}

// RedirectFragment makes htmx navigate the whole page to url.
func RedirectFragment(url string) *Fragment {
	return &Fragment{status: http.StatusOK, redirect: url}
}

// On queues an HX-Trigger event; detail is sent as the event's JSON payload.
func (f *Fragment) On(event string, detail any) *Fragment {
	if f.events == nil {
		f.events = make(map[string]any)
	}
	f.events[event] = detail
	return f
}

// ExpenseCreated announces the month the new expense was booked in.
func (f *Fragment) ExpenseCreated(d core.Date) *Fragment {
	return f.On(eventExpenseCreated, map[string]int{"year": d.Year(), "month": int(d.Month())})
}

// ResetForm asks the page to clear the add-expense form.
func (f *Fragment) ResetForm() *Fragment {
	return f.On(eventFormReset, struct{}{})
}

func (f *Fragment) Write(w http.ResponseWriter) {
	if f.redirect != "" {
		w.Header().Set("HX-Redirect", f.redirect)
	}
	if len(f.events) > 0 {
		if payload, err := json.Marshal(f.events); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}
	if f.message == "" {
		w.WriteHeader(f.status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(`<div class="` + f.class + `">` + template.HTMLEscapeString(f.message) + `</div>`))
}
