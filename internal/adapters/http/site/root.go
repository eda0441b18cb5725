// Package site serves the embedded explorer page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the explorer page and its assets to mux at the root.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", http.FileServer(FS()))
}
