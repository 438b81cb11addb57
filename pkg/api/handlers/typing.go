package handlers

import (
	"encoding/json"
	"net/http"

	"chatcore/pkg/chat"
	"chatcore/pkg/typing"
	"chatcore/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterTyping registers the typing presence endpoints.
func RegisterTyping(r *mux.Router) {
	r.HandleFunc("/conversations/{id}/typing", setTyping).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/typing", activeTypers).Methods(http.MethodGet)
}

func setTyping(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var body struct {
		Typing bool `json:"typing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := chat.SetTyping(p, mux.Vars(r)["id"], body.Typing); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func activeTypers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	out, err := chat.ActiveTypers(p, mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Typing []typing.Typist `json:"typing"`
	}{Typing: out})
}
