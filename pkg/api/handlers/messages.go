package handlers

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"chatcore/pkg/chat"
	"chatcore/pkg/telemetry"
	"chatcore/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterMessages registers the timeline endpoints.
func RegisterMessages(r *mux.Router) {
	r.HandleFunc("/conversations/{id}/messages", sendMessage).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/messages", listMessages).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/messages/{msg}", deleteMessage).Methods(http.MethodDelete)
}

func sendMessage(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var body struct {
		Content     string   `json:"content"`
		Type        string   `json:"type"`
		ReplyTo     string   `json:"reply_to"`
		Attachments []string `json:"attachments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	convID := mux.Vars(r)["id"]
	v, err := chat.SendMessage(p, convID, body.Content, body.Type, body.ReplyTo, body.Attachments)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	telemetry.CountMessageSent()
	slog.Info("message_created", "conversation", convID, "id", v.ID)
	_ = utils.JSONWrite(w, http.StatusCreated, v)
}

func listMessages(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	convID := mux.Vars(r)["id"]
	before := int64Query(r, "before", 0)
	limit := intQuery(r, "limit", 0)
	out, err := chat.ListMessages(p, convID, before, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	slog.Info("messages_list", "conversation", convID, "count", len(out))
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Conversation string             `json:"conversation"`
		Messages     []chat.MessageView `json:"messages"`
	}{Conversation: convID, Messages: out})
}

func deleteMessage(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	if err := chat.DeleteMessage(p, vars["id"], vars["msg"]); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
