package artwork

import (
	"context"
	"log"
	"sort"

	"artfetch/models"
)

// LogoRepository resolves transparent title-logo artwork for catalog
// entities: match the title against TMDB TV search, fetch the logo list for
// the matched series, and pick the best-ranked asset.
type LogoRepository struct {
	tmdb     *Client // nil when no API key is configured
	cache    *assetCache
	prefLang string
}

// NewLogoRepository creates a logo repository preferring assets in the
// given language ("en" when empty).
func NewLogoRepository(tmdb *Client, preferredLanguage string) *LogoRepository {
	if preferredLanguage == "" {
		preferredLanguage = "en"
	}
	return &LogoRepository{tmdb: tmdb, cache: newAssetCache(), prefLang: preferredLanguage}
}

// Peek returns the cached logo URL without any network I/O, or "" when
// nothing is cached or the entity is known to have no logo.
func (r *LogoRepository) Peek(id int) string {
	url, _ := r.cache.peek(id)
	return url
}

// Resolve returns the logo URL for the entity, consulting the cache first.
// year is 0 when no season year is known. Transient failures return ""
// without writing the cache so a later call can retry.
func (r *LogoRepository) Resolve(ctx context.Context, id int, title string, year int) string {
	if url, ok := r.cache.peek(id); ok {
		return url
	}

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
		if !match.HadError {
			r.cache.storeNoAsset(id)
		} else {
			log.Printf("[logos] id %d unresolved after transient search errors", id)
		}
		return ""
	}

	logos, err := r.tmdb.TVImages(ctx, match.Item.ID)
	if err != nil {
		// The match itself succeeded but the image fetch failed; leave the
		// cache untouched and let the next caller retry.
		log.Printf("[logos] images fetch for id %d (tmdb %d) failed: %v", id, match.Item.ID, err)
		return ""
	}

	best := bestLogo(logos, r.prefLang)
	if best == nil {
		// Confirmed match with no logo assets at all: cacheable negative.
		r.cache.storeNoAsset(id)
		return ""
	}

	url := imageURL(tmdbLogoSize, best.FilePath)
	r.cache.storeURL(id, url)
	return url
}

// Prefetch resolves every uncached ref, best-effort. One entity failing to
// resolve never blocks or fails the others.
func (r *LogoRepository) Prefetch(ctx context.Context, refs []models.EntityRef) {
	for _, ref := range refs {
		if r.cache.contains(ref.ID) {
			continue
		}
		r.Resolve(ctx, ref.ID, ref.Title, ref.SeasonYear)
	}
}

// bestLogo ranks preferred-language assets first, then by vote average,
// vote count, and width, and returns the winner.
func bestLogo(logos []Image, lang string) *Image {
	if len(logos) == 0 {
		return nil
	}
	ranked := make([]Image, len(logos))
	copy(ranked, logos)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if (a.Language == lang) != (b.Language == lang) {
			return a.Language == lang
		}
		if a.VoteAverage != b.VoteAverage {
			return a.VoteAverage > b.VoteAverage
		}
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.Width > b.Width
	})
	return &ranked[0]
}
