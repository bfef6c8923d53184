package models

// Card is a compact catalog row used by the home shelves.
type Card struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	CoverURL string `json:"coverUrl,omitempty"`
}

// Hero carries the richer metadata needed by the hero banner slider.
// Season is the single catalog season + year rather than a season count,
// since the primary feed has no stable "number of seasons" field.
type Hero struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	BannerURL    string   `json:"bannerUrl,omitempty"`
	CoverURL     string   `json:"coverUrl,omitempty"`
	Episodes     int      `json:"episodes,omitempty"`
	Season       string   `json:"season,omitempty"`
	SeasonYear   int      `json:"seasonYear,omitempty"`
	AverageScore int      `json:"averageScore,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// Details is the full detail record for a single title. It is produced
// either by the primary feed or, when that fails, by the TMDB fallback.
type Details struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	BannerURL    string   `json:"bannerUrl,omitempty"`
	CoverURL     string   `json:"coverUrl,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	AverageScore int      `json:"averageScore,omitempty"`
	Episodes     int      `json:"episodes,omitempty"`
	Format       string   `json:"format,omitempty"`
	Status       string   `json:"status,omitempty"`
	Season       string   `json:"season,omitempty"`
	SeasonYear   int      `json:"seasonYear,omitempty"`
}

// EntityRef identifies one catalog entity for artwork resolution.
// SeasonYear is 0 when the year is unknown.
type EntityRef struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	SeasonYear int    `json:"seasonYear,omitempty"`
}
