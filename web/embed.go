// Package web holds the embedded page templates and static assets.
package web

import "embed"

// TemplatesFS embeds the page templates and shared partials.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and chart script.
//go:embed static/*
var StaticFS embed.FS
