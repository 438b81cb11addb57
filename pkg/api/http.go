// Package api assembles the versioned HTTP surface.
package api

import (
	"net/http"

	"chatcore/pkg/api/handlers"
	"chatcore/pkg/auth"

	"github.com/gorilla/mux"
)

// Handler returns the /v1 API wrapped in the signed-principal middleware.
// Edge auth (API keys, CORS, rate limits) is layered above by the app.
func Handler() http.Handler {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterConversations(v1)
	handlers.RegisterMessages(v1)
	handlers.RegisterReactions(v1)
	handlers.RegisterTyping(v1)
	handlers.RegisterSearch(v1)
	return auth.RequireSignedPrincipal(r)
}
