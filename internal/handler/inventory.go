package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"inventory-audit-api/internal/model"
	"inventory-audit-api/internal/repository"
	"inventory-audit-api/internal/service"
	"inventory-audit-api/pkg/apierror"
	"inventory-audit-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// List handles GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.inventoryService.List(r.Context(), model.ItemFilter{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Query:    q.Get("q"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, items)
}

// Get handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.inventoryService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, item)
}

// Create handles POST /api/v1/inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateItemRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	item, err := h.inventoryService.Create(r.Context(), req.NewItem(), req.Reason.Ptr())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, item)
}

// Update handles PUT /api/v1/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	body := map[string]json.RawMessage{}
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	patch, reason, err := model.DecodeItemPatch(body)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	item, err := h.inventoryService.Update(r.Context(), id, patch, reason)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, item)
}

// AdjustQuantity handles PATCH /api/v1/inventory/{id}/quantity
func (h *InventoryHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req model.AdjustQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	item, err := h.inventoryService.AdjustQuantity(r.Context(), id, int64(req.Delta), req.Reason.Ptr())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, item)
}

// Delete handles DELETE /api/v1/inventory/{id}?mode=soft|hard
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	// The body is optional on DELETE; a malformed one is ignored.
	var req model.ReasonRequest
	_ = decodeBody(r, &req)
	reason := req.Reason.Ptr()
	if reason == nil {
		reason = model.LooseString(r.URL.Query().Get("reason")).Ptr()
	}

	mode := service.ParseDeleteMode(r.URL.Query().Get("mode"))
	result, err := h.inventoryService.Remove(r.Context(), id, mode, reason)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, result)
}

// itemID parses the {id} URL parameter. An id that is not a number cannot
// match any row, so it is answered with 404.
func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.NotFound(""))
		return 0, false
	}
	return id, true
}

// decodeBody decodes a JSON body. An empty body leaves target untouched.
func decodeBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeError translates service and repository errors into API errors.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *service.ValidationError
		duplicateErr  *repository.DuplicateSKUError
	)
	switch {
	case errors.As(err, &validationErr):
		apiErr := apierror.ValidationError(validationErr.Message)
		if len(validationErr.Fields) > 0 {
			apiErr = apiErr.WithDetails(validationErr.Fields)
		}
		response.Error(w, apiErr)
	case errors.As(err, &duplicateErr):
		response.Error(w, apierror.DuplicateSKU(duplicateErr.SKU))
	case errors.Is(err, repository.ErrNotFound):
		response.Error(w, apierror.NotFound(""))
	default:
		response.Error(w, err)
	}
}
