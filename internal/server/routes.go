package server

import (
	"net/http"
)

func (s *Server) routes() {
	r := s.router
	r.Use(requestIDMiddleware, loggingMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/manifest.json", s.handleManifest).Methods(http.MethodGet)
	r.HandleFunc("/extract/{id}", s.handleExtract).Methods(http.MethodGet)

	r.HandleFunc("/{token}/manifest.json", s.handleManifest).Methods(http.MethodGet)
	r.HandleFunc("/{token}/subtitles/{type}/{id}/{extra}.json", s.handleSubtitles).Methods(http.MethodGet)
	r.HandleFunc("/{token}/subtitles/{type}/{id}.json", s.handleSubtitles).Methods(http.MethodGet)
	r.HandleFunc("/{token}/extract/{id}", s.handleExtract).Methods(http.MethodGet)
	r.HandleFunc("/{token}/stream/{type}/{id}.json", s.handleStream).Methods(http.MethodGet)
	r.HandleFunc("/{token}/catalog/{type}/{id}.json", s.handleCatalog).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not Found"})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
}
