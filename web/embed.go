// Package web provides the embedded dashboard document and tracker script.
package web

import (
	"embed"
	"io/fs"
)

//go:embed public/dashboard.html public/tracker.js
var publicFS embed.FS

// Public returns the embedded assets with the public/ prefix stripped.
func Public() fs.FS {
	sub, err := fs.Sub(publicFS, "public")
	if err != nil {
		panic(err)
	}
	return sub
}

// DashboardHTML returns the dashboard document served at /.
func DashboardHTML() []byte {
	data, err := fs.ReadFile(Public(), "dashboard.html")
	if err != nil {
		return nil
	}
	return data
}

// TrackerScript returns the tracker source; {{.BaseURL}} is filled in per request.
func TrackerScript() string {
	data, err := fs.ReadFile(Public(), "tracker.js")
	if err != nil {
		return ""
	}
	return string(data)
}
