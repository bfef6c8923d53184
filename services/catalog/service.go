package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"artfetch/models"
	"artfetch/services/artwork"
)

const (
	recentWindow    = 7 * 24 * time.Hour
	recentTakeMax   = 20
	heroTakeMax     = 10
	heroPagePerPage = 30
)

// Service exposes the primary feed rows and per-title details, with a
// TMDB-backed fallback for details when the feed is unavailable.
type Service struct {
	client   *Client
	fallback *artwork.FallbackRepository // may be nil

	mu        sync.Mutex
	basicInfo map[int]basicInfo
}

// basicInfo is the lightweight per-title bookkeeping kept for the fallback
// path: enough to run a fuzzy TMDB match when the feed is down.
type basicInfo struct {
	title      string
	seasonYear int
}

func NewService(client *Client, fallback *artwork.FallbackRepository) *Service {
	return &Service{
		client:    client,
		fallback:  fallback,
		basicInfo: make(map[int]basicInfo),
	}
}

// rememberBasicInfo records title/year bookkeeping for an id. An existing
// entry is only overwritten when the new one adds a previously-missing
// season year.
func (s *Service) rememberBasicInfo(id int, title string, seasonYear int) {
	if id <= 0 || title == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.basicInfo[id]
	if !ok || (existing.seasonYear == 0 && seasonYear != 0) {
		s.basicInfo[id] = basicInfo{title: title, seasonYear: seasonYear}
	}
}

// BasicInfo returns the remembered title and season year for an id.
func (s *Service) BasicInfo(id int) (title string, seasonYear int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.basicInfo[id]
	return info.title, info.seasonYear, ok
}

// Wire types shared across queries.

type mediaTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
}

func (t mediaTitle) display() string {
	if t.English != "" {
		return t.English
	}
	if t.Romaji != "" {
		return t.Romaji
	}
	return "Unknown"
}

type coverImage struct {
	Large      string `json:"large"`
	ExtraLarge string `json:"extraLarge"`
}

type cardMedia struct {
	ID         int        `json:"id"`
	IsAdult    bool       `json:"isAdult"`
	Status     string     `json:"status"`
	Title      mediaTitle `json:"title"`
	CoverImage coverImage `json:"coverImage"`
}

type mediaPage struct {
	Page struct {
		Media []cardMedia `json:"media"`
	} `json:"Page"`
}

// Recent returns series that aired a new episode within the last week and
// are still releasing, most recent first, deduplicated by series.
func (s *Service) Recent(ctx context.Context, page, perPage int) ([]models.Card, error) {
	now := time.Now().Unix()
	from := now - int64(recentWindow/time.Second)

	var resp struct {
		Page struct {
			AiringSchedules []struct {
				AiringAt int        `json:"airingAt"`
				Episode  int        `json:"episode"`
				Media    *cardMedia `json:"media"`
			} `json:"airingSchedules"`
		} `json:"Page"`
	}
	vars := map[string]any{
		"page":            page,
		"perPage":         perPage,
		"airingAtGreater": from,
		"airingAtLesser":  now,
	}
	if err := s.client.post(ctx, recentQuery, vars, &resp); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	cards := make([]models.Card, 0, recentTakeMax)
	for _, sched := range resp.Page.AiringSchedules {
		m := sched.Media
		if m == nil || m.IsAdult || m.Status != "RELEASING" {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}

		title := m.Title.display()
		s.rememberBasicInfo(m.ID, title, 0)
		cards = append(cards, models.Card{ID: m.ID, Title: title, CoverURL: m.CoverImage.Large})
		if len(cards) >= recentTakeMax {
			break
		}
	}
	return cards, nil
}

// Trending returns the trending shelf.
func (s *Service) Trending(ctx context.Context, page, perPage int) ([]models.Card, error) {
	return s.cardPage(ctx, trendingQuery, page, perPage)
}

// Popular returns the all-time popular shelf.
func (s *Service) Popular(ctx context.Context, page, perPage int) ([]models.Card, error) {
	return s.cardPage(ctx, popularQuery, page, perPage)
}

func (s *Service) cardPage(ctx context.Context, query string, page, perPage int) ([]models.Card, error) {
	var resp mediaPage
	vars := map[string]any{"page": page, "perPage": perPage}
	if err := s.client.post(ctx, query, vars, &resp); err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0, len(resp.Page.Media))
	for _, m := range resp.Page.Media {
		if m.ID == 0 {
			continue
		}
		title := m.Title.display()
		s.rememberBasicInfo(m.ID, title, 0)
		cards = append(cards, models.Card{ID: m.ID, Title: title, CoverURL: m.CoverImage.Large})
	}
	return cards, nil
}

// Hero returns trending titles suitable for the hero slider. Only entries
// with wide banner art qualify, since the slider is optimized for it, and
// unreleased titles are skipped.
func (s *Service) Hero(ctx context.Context) ([]models.Hero, error) {
	var resp struct {
		Page struct {
			Media []struct {
				cardMedia
				Description  string   `json:"description"`
				BannerImage  string   `json:"bannerImage"`
				Genres       []string `json:"genres"`
				AverageScore int      `json:"averageScore"`
				Episodes     int      `json:"episodes"`
				Season       string   `json:"season"`
				SeasonYear   int      `json:"seasonYear"`
			} `json:"media"`
		} `json:"Page"`
	}
	vars := map[string]any{"page": 1, "perPage": heroPagePerPage}
	if err := s.client.post(ctx, heroQuery, vars, &resp); err != nil {
		return nil, err
	}

	heroes := make([]models.Hero, 0, heroTakeMax)
	for _, m := range resp.Page.Media {
		if m.ID == 0 || m.Status == "NOT_YET_RELEASED" || m.BannerImage == "" {
			continue
		}
		title := m.Title.display()
		s.rememberBasicInfo(m.ID, title, m.SeasonYear)
		heroes = append(heroes, models.Hero{
			ID:           m.ID,
			Title:        title,
			BannerURL:    m.BannerImage,
			CoverURL:     m.CoverImage.ExtraLarge,
			Episodes:     m.Episodes,
			Season:       m.Season,
			SeasonYear:   m.SeasonYear,
			AverageScore: m.AverageScore,
			Genres:       m.Genres,
			Description:  m.Description,
		})
		if len(heroes) >= heroTakeMax {
			break
		}
	}
	return heroes, nil
}

// Details returns the full detail record for a title. When the primary feed
// fails, the TMDB fallback repository answers from remembered basic info;
// nil means no details from either source this call.
func (s *Service) Details(ctx context.Context, id int) (*models.Details, error) {
	var resp struct {
		Media *struct {
			cardMedia
			Description  string   `json:"description"`
			BannerImage  string   `json:"bannerImage"`
			Genres       []string `json:"genres"`
			AverageScore int      `json:"averageScore"`
			Episodes     int      `json:"episodes"`
			Format       string   `json:"format"`
			Season       string   `json:"season"`
			SeasonYear   int      `json:"seasonYear"`
		} `json:"Media"`
	}
	err := s.client.post(ctx, detailsQuery, map[string]any{"id": id}, &resp)
	if err != nil || resp.Media == nil {
		if err != nil {
			log.Printf("[catalog] details %d via feed failed, trying fallback: %v", id, err)
		}
		return s.fallbackDetails(ctx, id), nil
	}

	m := resp.Media
	title := m.Title.display()
	s.rememberBasicInfo(id, title, m.SeasonYear)

	return &models.Details{
		ID:           id,
		Title:        title,
		Description:  m.Description,
		BannerURL:    m.BannerImage,
		CoverURL:     m.CoverImage.ExtraLarge,
		Genres:       m.Genres,
		AverageScore: m.AverageScore,
		Episodes:     m.Episodes,
		Format:       m.Format,
		Status:       m.Status,
		Season:       m.Season,
		SeasonYear:   m.SeasonYear,
	}, nil
}

func (s *Service) fallbackDetails(ctx context.Context, id int) *models.Details {
	if s.fallback == nil {
		return nil
	}
	title, seasonYear, ok := s.BasicInfo(id)
	if !ok {
		return nil
	}
	return s.fallback.GetDetails(ctx, id, title, seasonYear)
}

// PageResult is one page of search results.
type PageResult struct {
	Items       []models.Card `json:"items"`
	CurrentPage int           `json:"currentPage"`
	HasNextPage bool          `json:"hasNextPage"`
}

// Search runs a paged title search against the feed.
func (s *Service) Search(ctx context.Context, query string, page, perPage int) (PageResult, error) {
	var resp struct {
		Page struct {
			PageInfo struct {
				CurrentPage int  `json:"currentPage"`
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Media []cardMedia `json:"media"`
		} `json:"Page"`
	}
	vars := map[string]any{"page": page, "perPage": perPage, "search": query}
	if err := s.client.post(ctx, searchQuery, vars, &resp); err != nil {
		return PageResult{CurrentPage: page}, err
	}

	items := make([]models.Card, 0, len(resp.Page.Media))
	for _, m := range resp.Page.Media {
		if m.ID == 0 {
			continue
		}
		title := m.Title.display()
		s.rememberBasicInfo(m.ID, title, 0)
		items = append(items, models.Card{ID: m.ID, Title: title, CoverURL: m.CoverImage.Large})
	}

	current := resp.Page.PageInfo.CurrentPage
	if current == 0 {
		current = page
	}
	return PageResult{Items: items, CurrentPage: current, HasNextPage: resp.Page.PageInfo.HasNextPage}, nil
}
