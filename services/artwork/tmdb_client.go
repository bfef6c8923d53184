package artwork

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Minimal TMDB v3 client covering the search, images, and details
// endpoints used for artwork resolution and fallback metadata.

const (
	tmdbAPIBaseURL   = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"

	// CDN size segments per asset class.
	tmdbBackdropSize = "original"
	tmdbLogoSize     = "w500"
	tmdbPosterSize   = "w500"
)

type Client struct {
	apiKey string
	httpc  *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// NewClient creates a TMDB client. Pass a nil http.Client to get a default
// with a sane timeout.
func NewClient(apiKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		apiKey:      apiKey,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond,
	}
}

// SearchItem is one ranked row from a TMDB search response. Movie results
// are normalized into the same shape (title as Name, release date as Date).
type SearchItem struct {
	ID           int
	Name         string
	Date         string // "YYYY-MM-DD", may be empty
	BackdropPath string
}

// Image is a candidate artwork asset from the images endpoint.
type Image struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Language    string  `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TVDetails is the subset of /tv/{id} used for fallback metadata.
type TVDetails struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	Genres           []genre `json:"genres"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	VoteAverage      float64 `json:"vote_average"`
	Status           string  `json:"status"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
}

// MovieDetails is the subset of /movie/{id} used for fallback metadata.
type MovieDetails struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	Genres       []genre `json:"genres"`
	Runtime      int     `json:"runtime"`
	VoteAverage  float64 `json:"vote_average"`
	Status       string  `json:"status"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
}

// SearchTV searches TV series by title. year filters on first air date when
// greater than zero.
func (c *Client) SearchTV(ctx context.Context, query string, year int) ([]SearchItem, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}

	var resp struct {
		Results []struct {
			ID           int    `json:"id"`
			Name         string `json:"name"`
			FirstAirDate string `json:"first_air_date"`
			BackdropPath string `json:"backdrop_path"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/search/tv", params, &resp); err != nil {
		return nil, err
	}

	items := make([]SearchItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, SearchItem{ID: r.ID, Name: r.Name, Date: r.FirstAirDate, BackdropPath: r.BackdropPath})
	}
	return items, nil
}

// SearchMovie searches films by title. year filters on primary release year
// when greater than zero.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) ([]SearchItem, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}

	var resp struct {
		Results []struct {
			ID           int    `json:"id"`
			Title        string `json:"title"`
			ReleaseDate  string `json:"release_date"`
			BackdropPath string `json:"backdrop_path"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}

	items := make([]SearchItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, SearchItem{ID: r.ID, Name: r.Title, Date: r.ReleaseDate, BackdropPath: r.BackdropPath})
	}
	return items, nil
}

// TVImages returns the logo assets for a series. Only logos are requested;
// "null"-language assets are included alongside English ones since many
// title logos carry no language tag.
func (c *Client) TVImages(ctx context.Context, seriesID int) ([]Image, error) {
	params := url.Values{}
	params.Set("include_image_language", "en,null")

	var resp struct {
		ID    int     `json:"id"`
		Logos []Image `json:"logos"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d/images", seriesID), params, &resp); err != nil {
		return nil, err
	}
	return resp.Logos, nil
}

// TVDetails fetches series details for fallback metadata.
func (c *Client) TVDetails(ctx context.Context, seriesID int) (*TVDetails, error) {
	params := url.Values{}
	params.Set("language", "en-US")

	var resp TVDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d", seriesID), params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MovieDetails fetches film details for fallback metadata.
func (c *Client) MovieDetails(ctx context.Context, movieID int) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("language", "en-US")

	var resp MovieDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// getJSON issues a throttled GET and decodes the JSON body into out.
// Any transport, status, or decode failure is returned to the caller;
// the matcher decides what is safe to cache.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	c.throttle()

	params.Set("api_key", c.apiKey)
	reqURL := tmdbAPIBaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tmdb %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb %s: decode: %w", path, err)
	}
	return nil
}

// throttle enforces a minimum interval between requests so batch prefetches
// stay under the provider's rate limits.
func (c *Client) throttle() {
	if c.minInterval <= 0 {
		return
	}
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

// imageURL builds a CDN URL from a size segment and a TMDB file path
// fragment (which always starts with "/").
func imageURL(size, path string) string {
	return tmdbImageBaseURL + "/" + size + path
}

// optImageURL is imageURL for optional paths; empty in, empty out.
func optImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return imageURL(size, path)
}
