package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"artfetch/models"
	"artfetch/services/catalog"
	"artfetch/services/preload"
	"artfetch/services/startup"
)

const (
	shelfPerPage     = 50
	searchPerPage    = 36
	searchPerPageMax = 50
)

// catalogService is the feed capability consumed by the handler.
type catalogService interface {
	Recent(ctx context.Context, page, perPage int) ([]models.Card, error)
	Trending(ctx context.Context, page, perPage int) ([]models.Card, error)
	Popular(ctx context.Context, page, perPage int) ([]models.Card, error)
	Hero(ctx context.Context) ([]models.Hero, error)
	Details(ctx context.Context, id int) (*models.Details, error)
	Search(ctx context.Context, query string, page, perPage int) (catalog.PageResult, error)
}

var _ catalogService = (*catalog.Service)(nil)

// homePreloader triggers artwork warm-up for a home feed.
type homePreloader interface {
	PreloadHome(ctx context.Context, home *startup.Home, sizes preload.Sizes)
	PreloadNeighborhood(ctx context.Context, heroes []models.Hero, indices []int, sizes preload.Sizes)
}

var _ homePreloader = (*preload.Preloader)(nil)

// CatalogHandler serves the home feed, details, search, and the preload
// trigger.
type CatalogHandler struct {
	Catalog   catalogService
	Startup   *startup.Cache
	Preloader homePreloader
	Sizes     preload.Sizes
}

func NewCatalogHandler(svc catalogService, cache *startup.Cache, preloader homePreloader, sizes preload.Sizes) *CatalogHandler {
	return &CatalogHandler{Catalog: svc, Startup: cache, Preloader: preloader, Sizes: sizes}
}

// GetHome handles GET /api/home. The startup cache answers when populated;
// otherwise all four feed rows are fetched concurrently and cached. Rows
// that fail fetch come back empty rather than failing the response.
func (h *CatalogHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	if home := h.Startup.Get(); home != nil {
		respondJSON(w, http.StatusOK, home)
		return
	}

	home := h.FetchHome(r.Context())
	h.Startup.Set(home)
	respondJSON(w, http.StatusOK, home)
}

// FetchHome fetches all four home rows concurrently. It is also called by
// the startup warm-up path, which populates the cache before the first
// client request.
func (h *CatalogHandler) FetchHome(ctx context.Context) *startup.Home {
	home := &startup.Home{}
	var wg sync.WaitGroup

	wg.Add(4)
	go func() {
		defer wg.Done()
		rows, err := h.Catalog.Hero(ctx)
		if err != nil {
			log.Printf("[home] hero fetch failed: %v", err)
			return
		}
		home.Hero = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := h.Catalog.Recent(ctx, 1, shelfPerPage)
		if err != nil {
			log.Printf("[home] recent fetch failed: %v", err)
			return
		}
		home.Recent = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := h.Catalog.Trending(ctx, 1, shelfPerPage)
		if err != nil {
			log.Printf("[home] trending fetch failed: %v", err)
			return
		}
		home.Trending = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := h.Catalog.Popular(ctx, 1, shelfPerPage)
		if err != nil {
			log.Printf("[home] popular fetch failed: %v", err)
			return
		}
		home.Popular = rows
	}()

	wg.Wait()
	return home
}

// GetDetails handles GET /api/details/{id}. A 404 means neither the feed
// nor the TMDB fallback could produce a record this call.
func (h *CatalogHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	details, err := h.Catalog.Details(r.Context(), id)
	if err != nil {
		log.Printf("[details] id %d: %v", id, err)
	}
	if details == nil {
		respondError(w, http.StatusNotFound, "details unavailable")
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// Search handles GET /api/search?q=...&page=N.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "missing query")
		return
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		var err error
		page, err = strconv.Atoi(p)
		if err != nil || page < 1 {
			respondError(w, http.StatusBadRequest, "invalid page")
			return
		}
	}

	perPage := searchPerPage
	if pp := r.URL.Query().Get("perPage"); pp != "" {
		var err error
		perPage, err = strconv.Atoi(pp)
		if err != nil || perPage < 1 || perPage > searchPerPageMax {
			respondError(w, http.StatusBadRequest, "invalid perPage")
			return
		}
	}

	result, err := h.Catalog.Search(r.Context(), query, page, perPage)
	if err != nil {
		log.Printf("[search] %q: %v", query, err)
		respondError(w, http.StatusBadGateway, "search unavailable")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Preload handles POST /api/preload: warm artwork for the cached home feed
// (fetching it first when necessary) in the background. Optional body
// overrides the configured render sizes.
func (h *CatalogHandler) Preload(w http.ResponseWriter, r *http.Request) {
	sizes := h.Sizes
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeSizes(r, &sizes); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	home := h.Startup.Get()
	if home == nil {
		home = h.FetchHome(r.Context())
		h.Startup.Set(home)
	}

	go h.Preloader.PreloadHome(context.Background(), home, sizes)

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "preloading"})
}

type neighborhoodRequest struct {
	Indices []int          `json:"indices"`
	Sizes   *preload.Sizes `json:"sizes,omitempty"`
}

// PreloadNeighborhood handles POST /api/preload/neighborhood: warm the hero
// assets at the given slider indices so navigation does not pop. Requires a
// cached home feed; the client calls this after /api/home.
func (h *CatalogHandler) PreloadNeighborhood(w http.ResponseWriter, r *http.Request) {
	var req neighborhoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Indices) == 0 {
		respondError(w, http.StatusBadRequest, "missing indices")
		return
	}

	home := h.Startup.Get()
	if home == nil || len(home.Hero) == 0 {
		respondError(w, http.StatusConflict, "home feed not loaded")
		return
	}

	sizes := h.Sizes
	if req.Sizes != nil {
		sizes = *req.Sizes
	}
	go h.Preloader.PreloadNeighborhood(context.Background(), home.Hero, req.Indices, sizes)

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "preloading"})
}

func decodeSizes(r *http.Request, sizes *preload.Sizes) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(sizes)
}
