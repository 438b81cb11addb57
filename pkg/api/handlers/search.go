package handlers

import (
	"net/http"

	"chatcore/pkg/chat"
	"chatcore/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterSearch registers the message search endpoint.
func RegisterSearch(r *mux.Router) {
	r.HandleFunc("/search", searchMessages).Methods(http.MethodGet)
}

func searchMessages(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	page := intQuery(r, "page", 1)
	pageSize := intQuery(r, "page_size", 0)
	out, err := chat.SearchMessages(p, q, page, pageSize)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Query   string              `json:"query"`
		Results []chat.SearchResult `json:"results"`
	}{Query: q, Results: out})
}
