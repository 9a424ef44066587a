// Package api wires the HTTP surface: routing, handlers and request
// validation. Business rules live in internal/services.
package api

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/tendjournal/tend/internal/api/recovery"
	"github.com/tendjournal/tend/internal/auth"
	"github.com/tendjournal/tend/internal/services"
)

// Deps carries everything the router needs.
type Deps struct {
	Auth    *services.AuthService
	Journal *services.JournalService
	Growth  *services.GrowthService
	Areas   *services.AreaService
	Issuer  *auth.TokenIssuer
	Healthz http.HandlerFunc
}

// NewRouter builds the full route table. /api/auth/* and /health are open;
// everything else requires a bearer token.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if d.Healthz != nil {
		r.HandleFunc("/health", d.Healthz).Methods(http.MethodGet)
	}

	open := r.PathPrefix("/api/auth").Subrouter()
	open.HandleFunc("/signup", handleSignup(d.Auth)).Methods(http.MethodPost)
	open.HandleFunc("/login", handleLogin(d.Auth)).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(auth.Middleware(d.Issuer))

	protected.HandleFunc("/journal", handleCreateEntry(d.Journal)).Methods(http.MethodPost)
	protected.HandleFunc("/journal", handleListEntries(d.Journal)).Methods(http.MethodGet)
	protected.HandleFunc("/journal/{entryId}", handleGetEntry(d.Journal)).Methods(http.MethodGet)
	protected.HandleFunc("/journal/{entryId}", handleDeleteEntry(d.Journal)).Methods(http.MethodDelete)

	protected.HandleFunc("/growth/timeline/{areaName}", handleTimeline(d.Growth)).Methods(http.MethodGet)
	protected.HandleFunc("/growth/summary", handleSummary(d.Growth)).Methods(http.MethodGet)
	protected.HandleFunc("/growth/memory", handleMemory(d.Growth)).Methods(http.MethodGet)

	protected.HandleFunc("/user/profile", handleProfile(d.Auth)).Methods(http.MethodGet)
	protected.HandleFunc("/user/growth-areas", handleListAreas(d.Areas)).Methods(http.MethodGet)
	protected.HandleFunc("/user/growth-areas", handleReplaceAreas(d.Areas)).Methods(http.MethodPost)
	protected.HandleFunc("/user/growth-areas/{areaId}", handleUpdateArea(d.Areas)).Methods(http.MethodPut)
	protected.HandleFunc("/user/growth-areas/{areaId}", handleDeleteArea(d.Areas)).Methods(http.MethodDelete)

	return r
}
