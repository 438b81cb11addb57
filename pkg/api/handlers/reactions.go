package handlers

import (
	"encoding/json"
	"net/http"

	"chatcore/pkg/chat"
	"chatcore/pkg/telemetry"
	"chatcore/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterReactions registers the reaction endpoints.
func RegisterReactions(r *mux.Router) {
	r.HandleFunc("/conversations/{id}/messages/{msg}/reactions", listReactions).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/messages/{msg}/reactions", addReaction).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/messages/{msg}/reactions/{reaction}", removeReaction).Methods(http.MethodDelete)
}

func listReactions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	out, err := chat.ListReactions(p, vars["id"], vars["msg"])
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Message   string               `json:"message"`
		Reactions []chat.ReactionCount `json:"reactions"`
	}{Message: vars["msg"], Reactions: out})
}

func addReaction(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var body struct {
		Reaction string `json:"reaction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	vars := mux.Vars(r)
	row, created, err := chat.AddReaction(p, vars["id"], vars["msg"], body.Reaction)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		telemetry.CountReaction("add")
	}
	_ = utils.JSONWrite(w, status, row)
}

func removeReaction(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	deleted, err := chat.RemoveReaction(p, vars["id"], vars["msg"], vars["reaction"])
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if deleted {
		telemetry.CountReaction("remove")
	}
	// removing an absent reaction is a no-op, not an error
	w.WriteHeader(http.StatusNoContent)
}
