// Package web embeds the page templates and static assets served by cmd/server.
package web

import "embed"

// Templates holds layout.html and the page templates.
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the stylesheet and the change-event script.
//
//go:embed static
var Static embed.FS
