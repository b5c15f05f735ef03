package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"reelify/models"
	"reelify/services/catalog"
)

type catalogService interface {
	List(context.Context, catalog.MediaType, catalog.ListName, catalog.ListQuery) (json.RawMessage, error)
	Trending(context.Context, catalog.MediaType, string, catalog.ListQuery) (json.RawMessage, error)
	Search(context.Context, catalog.MediaType, string, catalog.ListQuery) (json.RawMessage, error)
	Genres(context.Context, catalog.MediaType) ([]models.Genre, error)
	ByGenre(context.Context, catalog.MediaType, int64, catalog.ListQuery) (json.RawMessage, error)
	ByProvider(context.Context, catalog.MediaType, int64, catalog.ListQuery) (json.RawMessage, error)
	Details(context.Context, catalog.MediaType, int64) (json.RawMessage, error)
	Recommendations(context.Context, catalog.MediaType, int64, catalog.ListQuery) (json.RawMessage, error)
	Trailer(context.Context, catalog.MediaType, int64) (*models.TrailerKey, error)
	Providers(context.Context, catalog.MediaType, string) (json.RawMessage, error)
	Countries(context.Context) (json.RawMessage, error)
}

var _ catalogService = (*catalog.Service)(nil)

// CatalogHandler serves the /api routes. Every handler answers JSON, either
// the upstream body or an ErrorResponse.
type CatalogHandler struct {
	Service catalogService
	// Production hides upstream error detail from responses.
	Production bool
}

func NewCatalogHandler(s catalogService, production bool) *CatalogHandler {
	return &CatalogHandler{Service: s, Production: production}
}

// List serves a fixed collection such as /api/movies or /api/tv/top_rated.
func (h *CatalogHandler) List(media catalog.MediaType, list catalog.ListName) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := catalog.ParseListQuery(r.URL.Query())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		body, err := h.Service.List(r.Context(), media, list, q)
		h.relay(w, r, body, err)
	}
}

func (h *CatalogHandler) Trending(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := catalog.ParseListQuery(r.URL.Query())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		body, err := h.Service.Trending(r.Context(), media, mux.Vars(r)["window"], q)
		h.relay(w, r, body, err)
	}
}

func (h *CatalogHandler) Search(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := catalog.ParseListQuery(r.URL.Query())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		body, err := h.Service.Search(r.Context(), media, r.URL.Query().Get("q"), q)
		h.relay(w, r, body, err)
	}
}

// Genres answers the bare genre array, not the upstream envelope.
func (h *CatalogHandler) Genres(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		genres, err := h.Service.Genres(r.Context(), media)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, genres)
	}
}

func (h *CatalogHandler) ByGenre(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalog.ParseID(mux.Vars(r)["genreId"])
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		q, err := catalog.ParseListQuery(r.URL.Query())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		body, err := h.Service.ByGenre(r.Context(), media, id, q)
		h.relay(w, r, body, err)
	}
}

func (h *CatalogHandler) ByProvider(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalog.ParseID(mux.Vars(r)["providerId"])
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		q, err := catalog.ParseListQuery(r.URL.Query())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		body, err := h.Service.ByProvider(r.Context(), media, id, q)
		h.relay(w, r, body, err)
	}
}

func (h *CatalogHandler) Details(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalog.ParseID(mux.Vars(r)["id"])
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		body, err := h.Service.Details(r.Context(), media, id)
		h.relay(w, r, body, err)
	}
}

func (h *CatalogHandler) Recommendations(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalog.ParseID(mux.Vars(r)["id"])
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		q, err := catalog.ParseListQuery(r.URL.Query())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		body, err := h.Service.Recommendations(r.Context(), media, id, q)
		h.relay(w, r, body, err)
	}
}

// Trailer answers {"key": ...} or 404 when the item has no trailer.
func (h *CatalogHandler) Trailer(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalog.ParseID(mux.Vars(r)["id"])
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		key, err := h.Service.Trailer(r.Context(), media, id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, key)
	}
}

func (h *CatalogHandler) Providers(media catalog.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := h.Service.Providers(r.Context(), media, r.URL.Query().Get("region"))
		h.relay(w, r, body, err)
	}
}

func (h *CatalogHandler) Countries(w http.ResponseWriter, r *http.Request) {
	body, err := h.Service.Countries(r.Context())
	h.relay(w, r, body, err)
}

func (h *CatalogHandler) relay(w http.ResponseWriter, r *http.Request, body json.RawMessage, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeError maps the catalog error taxonomy onto status codes.
func (h *CatalogHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *catalog.ValidationError
		notFound   *catalog.NotFoundError
		upstream   *catalog.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: validation.Message})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Message: notFound.Message})
	case errors.As(err, &upstream):
		log.Printf("[catalog] %s %s: %v", r.Method, r.URL.Path, err)
		resp := models.ErrorResponse{Message: upstream.Message}
		if !h.Production && upstream.Err != nil {
			resp.Error = upstream.Err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	default:
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("[catalog] %s %s: %v", r.Method, r.URL.Path, err)
		resp := models.ErrorResponse{Message: "Internal server error"}
		if !h.Production {
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}
