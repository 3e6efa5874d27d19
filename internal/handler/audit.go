package handler

import (
	"net/http"

	"inventory-audit-api/internal/service"
	"inventory-audit-api/pkg/response"
)

// AuditHandler serves the read-only audit log.
type AuditHandler struct {
	recorder *service.AuditRecorder
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(recorder *service.AuditRecorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// Recent handles GET /api/v1/audit
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	records, err := h.recorder.Recent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, records)
}
