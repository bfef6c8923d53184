package artwork

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestGetDetailsTVTier(t *testing.T) {
	var movieSearches int
	client := testClient(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/3/search/tv":
			return jsonResponse(http.StatusOK, `{"results":[{"id":95479,"name":"Jujutsu Kaisen"}]}`), nil
		case req.URL.Path == "/3/search/movie":
			movieSearches++
			return jsonResponse(http.StatusOK, `{"results":[]}`), nil
		case req.URL.Path == "/3/tv/95479":
			return jsonResponse(http.StatusOK, `{
				"id":95479,"name":"Jujutsu Kaisen","overview":"A boy swallows a cursed talisman.",
				"genres":[{"id":16,"name":"Animation"},{"id":10759,"name":"Action & Adventure"}],
				"number_of_episodes":47,"vote_average":8.574,"status":"Returning Series",
				"first_air_date":"2020-10-03","poster_path":"/poster.jpg","backdrop_path":"/bd.jpg"}`), nil
		}
		t.Fatalf("unexpected request: %s", req.URL.Path)
		return nil, nil
	})
	repo := NewFallbackRepository(client)

	d := repo.GetDetails(context.Background(), 113415, "Jujutsu Kaisen", 2020)
	if d == nil {
		t.Fatal("expected detail record")
	}
	if d.ID != 113415 {
		t.Fatalf("record must keep the feed id, got %d", d.ID)
	}
	if d.Format != "TV" || d.Episodes != 47 {
		t.Fatalf("unexpected record: %+v", d)
	}
	if d.AverageScore != 86 {
		t.Fatalf("expected score 86 (8.574*10 rounded), got %d", d.AverageScore)
	}
	if d.SeasonYear != 2020 {
		t.Fatalf("expected year 2020, got %d", d.SeasonYear)
	}
	if !strings.HasPrefix(d.CoverURL, "https://image.tmdb.org/t/p/w500/") {
		t.Fatalf("unexpected cover url: %s", d.CoverURL)
	}
	if movieSearches != 0 {
		t.Fatal("movie tier must not run when the TV tier matched")
	}

	if repo.Peek(113415) == nil {
		t.Fatal("expected cached record")
	}
}

func TestGetDetailsMovieTierFallback(t *testing.T) {
	client := testClient(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/3/search/tv":
			return jsonResponse(http.StatusOK, `{"results":[]}`), nil
		case req.URL.Path == "/3/search/movie":
			return jsonResponse(http.StatusOK, `{"results":[{"id":378064,"title":"A Silent Voice"}]}`), nil
		case req.URL.Path == "/3/movie/378064":
			return jsonResponse(http.StatusOK, `{
				"id":378064,"title":"A Silent Voice","overview":"A former bully seeks redemption.",
				"genres":[{"id":16,"name":"Animation"}],"runtime":130,"vote_average":8.9,
				"status":"Released","release_date":"2016-09-17"}`), nil
		}
		t.Fatalf("unexpected request: %s", req.URL.Path)
		return nil, nil
	})
	repo := NewFallbackRepository(client)

	d := repo.GetDetails(context.Background(), 20954, "A Silent Voice", 2016)
	if d == nil {
		t.Fatal("expected detail record from movie tier")
	}
	if d.Format != "MOVIE" || d.SeasonYear != 2016 || d.AverageScore != 89 {
		t.Fatalf("unexpected record: %+v", d)
	}
}

func TestGetDetailsConfirmedMissCached(t *testing.T) {
	var searches int
	client := testClient(func(req *http.Request) (*http.Response, error) {
		searches++
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	})
	repo := NewFallbackRepository(client)

	if d := repo.GetDetails(context.Background(), 5, "Nothing Matches This", 0); d != nil {
		t.Fatalf("expected nil, got %+v", d)
	}
	before := searches
	repo.GetDetails(context.Background(), 5, "Nothing Matches This", 0)
	if searches != before {
		t.Fatal("a miss confirmed on both tiers must be cached")
	}
}

func TestGetDetailsTransientSearchErrorNotCached(t *testing.T) {
	fail := true
	client := testClient(func(req *http.Request) (*http.Response, error) {
		if fail {
			return jsonResponse(http.StatusServiceUnavailable, `{}`), nil
		}
		switch {
		case req.URL.Path == "/3/search/tv":
			return jsonResponse(http.StatusOK, `{"results":[{"id":1,"name":"Show"}]}`), nil
		case req.URL.Path == "/3/tv/1":
			return jsonResponse(http.StatusOK, `{"id":1,"name":"Show","first_air_date":"2021-01-10"}`), nil
		}
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	})
	repo := NewFallbackRepository(client)

	if d := repo.GetDetails(context.Background(), 8, "Show", 0); d != nil {
		t.Fatalf("expected nil during outage, got %+v", d)
	}

	fail = false
	d := repo.GetDetails(context.Background(), 8, "Show", 0)
	if d == nil || d.Title != "Show" {
		t.Fatalf("expected retry to succeed, got %+v", d)
	}
}

func TestGetDetailsDetailStageFailureNotCached(t *testing.T) {
	failDetails := true
	client := testClient(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/3/search/tv":
			return jsonResponse(http.StatusOK, `{"results":[{"id":1,"name":"Show"}]}`), nil
		case req.URL.Path == "/3/tv/1":
			if failDetails {
				return jsonResponse(http.StatusInternalServerError, `{}`), nil
			}
			return jsonResponse(http.StatusOK, `{"id":1,"name":"Show"}`), nil
		}
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	})
	repo := NewFallbackRepository(client)

	if d := repo.GetDetails(context.Background(), 8, "Show", 0); d != nil {
		t.Fatalf("expected nil when the detail stage failed, got %+v", d)
	}

	failDetails = false
	if d := repo.GetDetails(context.Background(), 8, "Show", 0); d == nil {
		t.Fatal("expected retry to succeed after detail stage recovered")
	}
}

func TestGetDetailsNilClient(t *testing.T) {
	repo := NewFallbackRepository(nil)
	if d := repo.GetDetails(context.Background(), 1, "Anything", 0); d != nil {
		t.Fatalf("expected nil without a client, got %+v", d)
	}
}

func TestTVDetailsRecordTitleFallback(t *testing.T) {
	d := tvDetailsRecord(12, "Feed Title", &TVDetails{ID: 99, Name: "  "})
	if d.Title != "Feed Title" {
		t.Fatalf("expected feed title fallback, got %q", d.Title)
	}
}

func TestScaleScore(t *testing.T) {
	tests := []struct {
		avg  float64
		want int
	}{
		{0, 0},
		{8.574, 86},
		{10, 100},
		{11.2, 100},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := scaleScore(tt.avg); got != tt.want {
			t.Errorf("scaleScore(%v) = %d, want %d", tt.avg, got, tt.want)
		}
	}
}

func TestYearOf(t *testing.T) {
	if got := yearOf("2020-10-03"); got != 2020 {
		t.Fatalf("expected 2020, got %d", got)
	}
	if got := yearOf(""); got != 0 {
		t.Fatalf("expected 0 for empty date, got %d", got)
	}
	if got := yearOf("bad"); got != 0 {
		t.Fatalf("expected 0 for malformed date, got %d", got)
	}
}
