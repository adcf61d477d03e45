package coupon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-promo/internal/cart"
	"github.com/noah-isme/backend-promo/internal/common"
)

// Handler exposes the coupon management and evaluation endpoints.
type Handler struct {
	Svc          *Service
	Validate     *validator.Validate
	DefaultLimit int
	MaxLimit     int
}

type cartRequest struct {
	Cart cart.Cart `json:"cart"`
}

// Create registers a new coupon definition.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	rule, err := h.Svc.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": Summary{ID: rule.ID, Kind: rule.Kind, Discount: rule.Discount},
	})
}

// List returns stored coupons with pagination metadata.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	page, perPage := common.ParsePagination(r, h.defaultLimit(), h.MaxLimit)
	window, meta := common.PageSlice(rules, page, perPage)
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       window,
		"pagination": meta,
	})
}

// Get returns one coupon by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rule, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rule})
}

// Update merges new details into an existing coupon.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	rule, err := h.Svc.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rule})
}

// Delete removes a coupon.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Applicable evaluates every coupon against the submitted cart.
func (h *Handler) Applicable(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	results, err := h.Svc.Applicable(r.Context(), req.Cart.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"applicable_coupons": results})
}

// Apply applies one coupon to the submitted cart and returns the itemized result.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	result, err := h.Svc.Apply(r.Context(), id, req.Cart.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"updated_cart": result})
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (Payload, bool) {
	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return Payload{}, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return Payload{}, false
		}
	}
	return payload, true
}

func (h *Handler) defaultLimit() int {
	if h.DefaultLimit <= 0 {
		return 20
	}
	return h.DefaultLimit
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid coupon id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "COUPON_NOT_FOUND", "coupon not found", nil)
	case errors.Is(err, ErrInvalidKind):
		common.JSONError(w, http.StatusBadRequest, "INVALID_COUPON_KIND", err.Error(), nil)
	case errors.Is(err, ErrInvalidRule):
		common.JSONError(w, http.StatusBadRequest, "INVALID_COUPON_DATA", err.Error(), nil)
	case errors.Is(err, cart.ErrInvalidItem):
		common.JSONError(w, http.StatusBadRequest, "INVALID_CART_DATA", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
