// Package web embeds the page templates and static assets served by the
// web UI.
package web

import "embed"

// TemplatesFS holds the html/template pages; layout.html defines the shared
// header and footer.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the htmx helper script.
//
//go:embed static/*
var StaticFS embed.FS
