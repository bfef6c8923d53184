package preload

import (
	"context"
	"log"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"artfetch/models"
	"artfetch/services/startup"
)

const (
	// Hard cap on a single warm batch so a slow connection cannot strand
	// the user on startup.
	maxWarmJobs = 64

	// TV devices are bandwidth constrained; keep fetch/decode concurrency modest.
	warmConcurrency = 4

	// Posters per shelf that are immediately visible when Home is entered.
	shelfWarmCount = 14

	// Stable logo render size used by the hero slider.
	defaultLogoWidth  = 520
	defaultLogoHeight = 220
)

// Sizes carries the pixel dimensions the UI renders each asset class at.
// Zero logo dimensions fall back to the hero slider defaults.
type Sizes struct {
	HeroWidth    int `json:"heroWidth"`
	HeroHeight   int `json:"heroHeight"`
	PosterWidth  int `json:"posterWidth"`
	PosterHeight int `json:"posterHeight"`
	LogoWidth    int `json:"logoWidth"`
	LogoHeight   int `json:"logoHeight"`
}

func (s Sizes) logoWidth() int {
	if s.LogoWidth > 0 {
		return s.LogoWidth
	}
	return defaultLogoWidth
}

func (s Sizes) logoHeight() int {
	if s.LogoHeight > 0 {
		return s.LogoHeight
	}
	return defaultLogoHeight
}

// Job describes one warm-up task: decode one URL at one target size.
// Jobs are per-batch and discarded after execution.
type Job struct {
	URL    string
	Width  int
	Height int
}

// artworkResolver is the repository capability the preloader needs.
type artworkResolver interface {
	Resolve(ctx context.Context, id int, title string, year int) string
}

// Preloader coordinates concurrent artwork resolution and image warm-up for
// a working set of entities. It owns no cache state of its own; the
// repositories and warmer keep whatever was completed even when a batch is
// cut short.
type Preloader struct {
	backdrops      artworkResolver
	logos          artworkResolver
	warmer         *ImageWarmer
	resolveTimeout time.Duration
}

// NewPreloader creates a preloader. resolveTimeout bounds the metadata
// resolution stage of each batch (zero means no bound); warm-up itself is
// bounded by count and concurrency instead.
func NewPreloader(backdrops, logos artworkResolver, warmer *ImageWarmer, resolveTimeout time.Duration) *Preloader {
	return &Preloader{
		backdrops:      backdrops,
		logos:          logos,
		warmer:         warmer,
		resolveTimeout: resolveTimeout,
	}
}

// PreloadHome warms hero backdrops and logos plus the first batch of shelf
// posters that are visible when Home is entered. Failures are best-effort
// throughout: a slow or failing upstream only means fewer warmed images.
func (p *Preloader) PreloadHome(ctx context.Context, home *startup.Home, sizes Sizes) {
	if home == nil {
		return
	}

	resolved := p.resolveHeroes(ctx, home.Hero)

	var jobs []Job
	seen := make(map[string]struct{})
	add := func(url string, width, height int) {
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		jobs = append(jobs, Job{URL: url, Width: width, Height: height})
	}

	// Hero backdrops decode at viewport size; the feed banner or cover
	// stands in when no TMDB backdrop resolved.
	for _, rh := range resolved {
		add(heroImageURL(rh), sizes.HeroWidth, sizes.HeroHeight)
	}
	for _, rh := range resolved {
		add(rh.logoURL, sizes.logoWidth(), sizes.logoHeight())
	}

	// Shelf posters immediately visible on Home.
	for _, shelf := range [][]models.Card{home.Recent, home.Trending, home.Popular} {
		for i, card := range shelf {
			if i >= shelfWarmCount {
				break
			}
			add(card.CoverURL, sizes.PosterWidth, sizes.PosterHeight)
		}
	}

	p.Warm(ctx, jobs)
}

// PreloadNeighborhood warms the hero assets at the given slider indices so
// DPAD navigation and auto-advance do not pop. Out-of-range indices are
// ignored.
func (p *Preloader) PreloadNeighborhood(ctx context.Context, heroes []models.Hero, indices []int, sizes Sizes) {
	if len(heroes) == 0 {
		return
	}

	chosen := make([]models.Hero, 0, len(indices))
	seenIDs := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(heroes) {
			continue
		}
		h := heroes[i]
		if _, dup := seenIDs[h.ID]; dup {
			continue
		}
		seenIDs[h.ID] = struct{}{}
		chosen = append(chosen, h)
	}

	resolved := p.resolveHeroes(ctx, chosen)

	var jobs []Job
	seen := make(map[string]struct{})
	add := func(url string, width, height int) {
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		jobs = append(jobs, Job{URL: url, Width: width, Height: height})
	}

	for _, rh := range resolved {
		add(heroImageURL(rh), sizes.HeroWidth, sizes.HeroHeight)
	}
	for _, rh := range resolved {
		add(rh.logoURL, sizes.logoWidth(), sizes.logoHeight())
	}

	p.Warm(ctx, jobs)
}

// Warm executes the job batch under the count cap and concurrency gate.
// Per-job failures are logged and swallowed; a warm batch never fails.
func (p *Preloader) Warm(ctx context.Context, jobs []Job) {
	if len(jobs) == 0 {
		return
	}
	if len(jobs) > maxWarmJobs {
		jobs = jobs[:maxWarmJobs]
	}

	wp := pool.New().WithMaxGoroutines(warmConcurrency)
	for _, job := range jobs {
		job := job
		wp.Go(func() {
			if job.URL == "" {
				return
			}
			if err := p.warmer.WarmImage(ctx, job.URL, job.Width, job.Height); err != nil {
				log.Printf("[preload] warm %s: %v", job.URL, err)
			}
		})
	}
	wp.Wait()
}

type resolvedHero struct {
	hero        models.Hero
	backdropURL string
	logoURL     string
}

// resolveHeroes looks up backdrop and logo URLs for every hero
// concurrently, bounded by the resolve timeout. Branches that complete
// populate the repository caches; branches cut off by the deadline are
// simply left unresolved for a later attempt. Siblings never cancel each
// other.
func (p *Preloader) resolveHeroes(ctx context.Context, heroes []models.Hero) []resolvedHero {
	if len(heroes) == 0 {
		return nil
	}

	if p.resolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.resolveTimeout)
		defer cancel()
	}

	resolved := make([]resolvedHero, len(heroes))
	var wg conc.WaitGroup
	for i, h := range heroes {
		i, h := i, h
		wg.Go(func() {
			resolved[i] = resolvedHero{
				hero:        h,
				backdropURL: p.backdrops.Resolve(ctx, h.ID, h.Title, h.SeasonYear),
				logoURL:     p.logos.Resolve(ctx, h.ID, h.Title, h.SeasonYear),
			}
		})
	}
	wg.Wait()
	return resolved
}

func heroImageURL(rh resolvedHero) string {
	if rh.backdropURL != "" {
		return rh.backdropURL
	}
	if rh.hero.BannerURL != "" {
		return rh.hero.BannerURL
	}
	return rh.hero.CoverURL
}
