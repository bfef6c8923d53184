package artwork

import (
	"context"
	"log"

	"artfetch/models"
)

// BackdropRepository resolves high-quality 16:9 backdrop URLs for catalog
// entities. The primary feed banner is often too low-resolution for a TV
// hero slider, so titles are matched against TMDB TV search and the series
// backdrop used when available; the UI falls back to the feed banner or
// cover when this repository returns nothing.
type BackdropRepository struct {
	tmdb  *Client // nil when no API key is configured
	cache *assetCache
}

func NewBackdropRepository(tmdb *Client) *BackdropRepository {
	return &BackdropRepository{tmdb: tmdb, cache: newAssetCache()}
}

// Peek returns the cached backdrop URL without any network I/O, or "" when
// nothing is cached or the entity is known to have no backdrop.
func (r *BackdropRepository) Peek(id int) string {
	url, _ := r.cache.peek(id)
	return url
}

// Resolve returns the backdrop URL for the entity, consulting the cache
// first. year is 0 when no season year is known. An empty return means no
// backdrop; transient upstream failures also return "" but leave the cache
// untouched so a later call can retry.
func (r *BackdropRepository) Resolve(ctx context.Context, id int, title string, year int) string {
	if url, ok := r.cache.peek(id); ok {
		return url
	}

	// No API key: permanent, immediate negative for every id.
	if r.tmdb == nil {
		r.cache.storeNoAsset(id)
		return ""
	}

	queries := BuildCandidateQueries(title)
	if len(queries) == 0 {
		r.cache.storeNoAsset(id)
		return ""
	}

	match := findFirstMatch(ctx, r.tmdb.SearchTV, queries, year)
	if match.Item == nil {
		// Only cache a negative when TMDB was reachable and still returned
		// no match; an unconfirmed miss stays uncached.
		if !match.HadError {
			r.cache.storeNoAsset(id)
		} else {
			log.Printf("[backdrops] id %d unresolved after transient search errors", id)
		}
		return ""
	}

	// The search row already carries the backdrop path; no second fetch.
	// A confirmed match without one is legitimate, cacheable information.
	if match.Item.BackdropPath == "" {
		r.cache.storeNoAsset(id)
		return ""
	}

	url := imageURL(tmdbBackdropSize, match.Item.BackdropPath)
	r.cache.storeURL(id, url)
	return url
}

// Prefetch resolves every uncached ref, best-effort. One entity failing to
// resolve never blocks or fails the others.
func (r *BackdropRepository) Prefetch(ctx context.Context, refs []models.EntityRef) {
	for _, ref := range refs {
		if r.cache.contains(ref.ID) {
			continue
		}
		r.Resolve(ctx, ref.ID, ref.Title, ref.SeasonYear)
	}
}
