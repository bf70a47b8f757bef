package handler

import (
	"net/http"
	"strings"

	"employee-records/internal/model"
	"employee-records/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
	views   *Views
}

func NewAuditHandler(service *service.AuditService, views *Views) *AuditHandler {
	return &AuditHandler{service: service, views: views}
}

type auditView struct {
	Items []model.AuditEntry
	Meta  model.Meta
	Query model.AuditQuery
	Prev  int
	Next  int
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.AuditQuery{
		Action:   strings.TrimSpace(query.Get("action")),
		Username: strings.TrimSpace(query.Get("username")),
		Page:     parseIntOrDefault(query.Get("page"), 1),
		Limit:    parseIntOrDefault(query.Get("limit"), 50),
	}

	items, meta, err := h.service.Query(r.Context(), filter)
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, model.AuditListData{Items: items}, &meta)
		return
	}

	view := auditView{Items: items, Meta: meta, Query: filter}
	if meta.Page > 1 {
		view.Prev = meta.Page - 1
	}
	if meta.Page < meta.TotalPages {
		view.Next = meta.Page + 1
	}

	p := h.views.newPage(r, "Audit Log")
	p.Data = view
	h.views.render(w, http.StatusOK, "audit", p)
}
