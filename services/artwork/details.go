package artwork

import (
	"context"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"

	"artfetch/models"
)

// FallbackRepository produces best-effort detail records from TMDB when the
// primary feed is unavailable: match the title against TV search first, then
// film search, and fetch rich metadata for whichever matched. Results are
// cached per entity id for the process lifetime and never mutated.
type FallbackRepository struct {
	tmdb *Client // nil when no API key is configured

	mu      sync.RWMutex
	details map[int]*models.Details
	misses  map[int]struct{}
}

func NewFallbackRepository(tmdb *Client) *FallbackRepository {
	return &FallbackRepository{
		tmdb:    tmdb,
		details: make(map[int]*models.Details),
		misses:  make(map[int]struct{}),
	}
}

// Peek returns the cached detail record without any network I/O, or nil.
func (r *FallbackRepository) Peek(id int) *models.Details {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.details[id]
}

// GetDetails resolves a fallback detail record for the entity. year is 0
// when no season year is known. A nil return after a transient failure is
// not cached; a miss confirmed on both the TV and film tiers is cached and
// never retried this process.
func (r *FallbackRepository) GetDetails(ctx context.Context, id int, title string, year int) *models.Details {
	r.mu.RLock()
	d := r.details[id]
	_, missed := r.misses[id]
	r.mu.RUnlock()
	if d != nil {
		return d
	}
	if missed {
		return nil
	}

	if r.tmdb == nil {
		r.storeMiss(id)
		return nil
	}

	queries := BuildCandidateQueries(title)
	if len(queries) == 0 {
		r.storeMiss(id)
		return nil
	}

	// Series matches take priority over films.
	tvMatch := findFirstMatch(ctx, r.tmdb.SearchTV, queries, year)
	if tvMatch.Item != nil {
		tv, err := r.tmdb.TVDetails(ctx, tvMatch.Item.ID)
		if err != nil {
			// Match confirmed, detail stage failed: retryable, nothing cached.
			log.Printf("[fallback] tv details for id %d (tmdb %d) failed: %v", id, tvMatch.Item.ID, err)
			return nil
		}
		d := tvDetailsRecord(id, title, tv)
		r.store(id, d)
		return d
	}

	movieMatch := findFirstMatch(ctx, r.tmdb.SearchMovie, queries, year)
	if movieMatch.Item != nil {
		m, err := r.tmdb.MovieDetails(ctx, movieMatch.Item.ID)
		if err != nil {
			log.Printf("[fallback] movie details for id %d (tmdb %d) failed: %v", id, movieMatch.Item.ID, err)
			return nil
		}
		d := movieDetailsRecord(id, title, m)
		r.store(id, d)
		return d
	}

	// A definitive miss needs both tiers confirmed error-free.
	if !tvMatch.HadError && !movieMatch.HadError {
		r.storeMiss(id)
	}
	return nil
}

func (r *FallbackRepository) store(id int, d *models.Details) {
	r.mu.Lock()
	r.details[id] = d
	r.mu.Unlock()
}

func (r *FallbackRepository) storeMiss(id int) {
	r.mu.Lock()
	r.misses[id] = struct{}{}
	r.mu.Unlock()
}

func tvDetailsRecord(id int, fallbackTitle string, tv *TVDetails) *models.Details {
	title := strings.TrimSpace(tv.Name)
	if title == "" {
		title = fallbackTitle
	}
	return &models.Details{
		ID:           id,
		Title:        title,
		Description:  tv.Overview,
		BannerURL:    optImageURL(tmdbBackdropSize, tv.BackdropPath),
		CoverURL:     optImageURL(tmdbPosterSize, tv.PosterPath),
		Genres:       genreNames(tv.Genres),
		AverageScore: scaleScore(tv.VoteAverage),
		Episodes:     tv.NumberOfEpisodes,
		Format:       "TV",
		Status:       tv.Status,
		SeasonYear:   yearOf(tv.FirstAirDate),
	}
}

func movieDetailsRecord(id int, fallbackTitle string, m *MovieDetails) *models.Details {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = fallbackTitle
	}
	return &models.Details{
		ID:           id,
		Title:        title,
		Description:  m.Overview,
		BannerURL:    optImageURL(tmdbBackdropSize, m.BackdropPath),
		CoverURL:     optImageURL(tmdbPosterSize, m.PosterPath),
		Genres:       genreNames(m.Genres),
		AverageScore: scaleScore(m.VoteAverage),
		Format:       "MOVIE",
		Status:       m.Status,
		SeasonYear:   yearOf(m.ReleaseDate),
	}
}

func genreNames(genres []genre) []string {
	if len(genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

// scaleScore maps the upstream 0-10 vote average onto the 0-100 scale the
// primary feed uses, rounded and clamped.
func scaleScore(avg float64) int {
	score := int(math.Round(avg * 10))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// yearOf parses the leading year of a "YYYY-MM-DD" date string, 0 when
// unparseable.
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
