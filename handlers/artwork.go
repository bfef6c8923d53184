package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"artfetch/models"
	"artfetch/services/artwork"
)

// artworkRepository is the repository capability the handler needs; both
// the backdrop and logo repositories satisfy it.
type artworkRepository interface {
	Peek(id int) string
	Resolve(ctx context.Context, id int, title string, year int) string
	Prefetch(ctx context.Context, refs []models.EntityRef)
}

var (
	_ artworkRepository = (*artwork.BackdropRepository)(nil)
	_ artworkRepository = (*artwork.LogoRepository)(nil)
)

// ArtworkHandler serves backdrop and logo resolution plus batch prefetch.
type ArtworkHandler struct {
	Backdrops artworkRepository
	Logos     artworkRepository
}

func NewArtworkHandler(backdrops, logos artworkRepository) *ArtworkHandler {
	return &ArtworkHandler{Backdrops: backdrops, Logos: logos}
}

// artworkResponse is returned by the single-asset endpoints. URL is empty
// when the entity has no such asset (the client falls back to feed art).
type artworkResponse struct {
	ID  int    `json:"id"`
	URL string `json:"url,omitempty"`
}

// GetBackdrop handles GET /api/artwork/backdrop/{id}. With a title query
// parameter the asset is resolved (network permitted); without one only the
// cache is consulted, which the client uses to avoid flicker on first paint.
func (h *ArtworkHandler) GetBackdrop(w http.ResponseWriter, r *http.Request) {
	h.getAsset(w, r, h.Backdrops)
}

// GetLogo handles GET /api/artwork/logo/{id}, same contract as GetBackdrop.
func (h *ArtworkHandler) GetLogo(w http.ResponseWriter, r *http.Request) {
	h.getAsset(w, r, h.Logos)
}

func (h *ArtworkHandler) getAsset(w http.ResponseWriter, r *http.Request, repo artworkRepository) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		respondJSON(w, http.StatusOK, artworkResponse{ID: id, URL: repo.Peek(id)})
		return
	}

	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		year, err = strconv.Atoi(y)
		if err != nil || year < 0 {
			respondError(w, http.StatusBadRequest, "invalid year")
			return
		}
	}

	respondJSON(w, http.StatusOK, artworkResponse{ID: id, URL: repo.Resolve(r.Context(), id, title, year)})
}

type prefetchRequest struct {
	Items []models.EntityRef `json:"items"`
}

// Prefetch handles POST /api/artwork/prefetch: fire-and-forget resolution
// of both asset kinds for every uncached item in the batch.
func (h *ArtworkHandler) Prefetch(w http.ResponseWriter, r *http.Request) {
	var req prefetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	refs := make([]models.EntityRef, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ID > 0 && item.Title != "" {
			refs = append(refs, item)
		}
	}

	// Detach from the request context: the warm-up outlives the response.
	go h.Backdrops.Prefetch(context.Background(), refs)
	go h.Logos.Prefetch(context.Background(), refs)

	respondJSON(w, http.StatusAccepted, map[string]int{"queued": len(refs)})
}
