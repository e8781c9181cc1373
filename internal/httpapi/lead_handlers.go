package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/atom-sv/leadagent/internal/store"
)

func (r *Router) handleListLeads(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))

	leads, err := r.store.ListLeads(req.Context(), limit, offset)
	if err != nil {
		r.logger.Printf("list leads failed: %v", err)
		captureError(req, err, "list leads failed")
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}
	if leads == nil {
		leads = []store.LeadListItem{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (r *Router) handleGetLead(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(req.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error": "invalid lead id"}`, http.StatusBadRequest)
		return
	}

	detail, err := r.store.GetLeadDetail(req.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
			return
		}
		r.logger.Printf("get lead %d failed: %v", id, err)
		captureError(req, err, "get lead failed")
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (r *Router) handleConversationMessages(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(req.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error": "invalid conversation id"}`, http.StatusBadRequest)
		return
	}

	messages, err := r.store.ListMessages(req.Context(), id)
	if err != nil {
		r.logger.Printf("list messages for conversation %d failed: %v", id, err)
		captureError(req, err, "list messages failed")
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}
