package handlers

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"chatcore/pkg/chat"
	"chatcore/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterConversations registers the conversation directory endpoints.
func RegisterConversations(r *mux.Router) {
	r.HandleFunc("/conversations", createConversation).Methods(http.MethodPost)
	r.HandleFunc("/conversations", listConversations).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}", getConversation).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/members", addMember).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/members/{user}", removeMember).Methods(http.MethodDelete)
}

func createConversation(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var body struct {
		Type       string   `json:"type"`
		Name       string   `json:"name"`
		Department string   `json:"department"`
		IsPrivate  bool     `json:"is_private"`
		Members    []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := chat.CreateConversation(p, body.Type, body.Members, body.Name, body.Department, body.IsPrivate)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	slog.Info("conversation_created", "conversation", v.ID, "type", v.Type, "by", p)
	_ = utils.JSONWrite(w, http.StatusCreated, v)
}

func listConversations(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	page := intQuery(r, "page", 1)
	pageSize := intQuery(r, "page_size", 0)
	out, err := chat.ListConversations(p, page, pageSize)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Conversations []chat.ConversationPreview `json:"conversations"`
	}{Conversations: out})
}

func getConversation(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	v, err := chat.GetConversation(p, mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, v)
}

func addMember(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var body struct {
		User string `json:"user"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := chat.AddMember(p, mux.Vars(r)["id"], body.User, body.Role)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, v)
}

func removeMember(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	if err := chat.RemoveMember(p, vars["id"], vars["user"]); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
