// Package httpstore exposes a store over HTTP/JSON and implements the store
// contract as a client of that API.
package httpstore

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/platform/httpx"
	"github.com/odyssey-erp/admindash/internal/shared"
)

// Handler serves one collection.
type Handler[T any, P any] struct {
	logger *slog.Logger
	store  entity.Store[T, P]
	desc   entity.Descriptor[T, P]
}

// NewHandler builds Handler instance.
func NewHandler[T any, P any](logger *slog.Logger, store entity.Store[T, P], desc entity.Descriptor[T, P]) *Handler[T, P] {
	return &Handler[T, P]{logger: logger, store: store, desc: desc}
}

// MountRoutes registers collection routes.
func (h *Handler[T, P]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler[T, P]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.GetAll(r.Context())
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	if items == nil {
		items = []T{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler[T, P]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler[T, P]) create(w http.ResponseWriter, r *http.Request) {
	var draft T
	if err := httpx.DecodeJSON(w, r, &draft); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.store.Create(r.Context(), draft)
	if err != nil {
		h.fail(w, "create", err)
		return
	}
	w.Header().Set("Location", strings.TrimRight(r.URL.Path, "/")+"/"+strconv.FormatInt(h.desc.ID(rec), 10))
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler[T, P]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch P
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler[T, P]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler[T, P]) fail(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrValidation) && h.logger != nil {
		h.logger.Error("store request failed", slog.String("kind", string(h.desc.Kind)), slog.String("op", op), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}
