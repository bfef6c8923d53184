package artwork

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func testClient(rt roundTripFunc) *Client {
	c := NewClient("test-key", &http.Client{Transport: rt})
	c.minInterval = 0
	return c
}

func TestSearchTVParams(t *testing.T) {
	var gotURL string
	client := testClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"results":[{"id":95479,"name":"Jujutsu Kaisen","first_air_date":"2020-10-03","backdrop_path":"/bd.jpg"}]}`), nil
	})

	items, err := client.SearchTV(context.Background(), "Jujutsu Kaisen", 2020)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	item := items[0]
	if item.ID != 95479 || item.Name != "Jujutsu Kaisen" || item.Date != "2020-10-03" || item.BackdropPath != "/bd.jpg" {
		t.Fatalf("unexpected item: %+v", item)
	}

	req, _ := http.NewRequest(http.MethodGet, gotURL, nil)
	q := req.URL.Query()
	if q.Get("query") != "Jujutsu Kaisen" {
		t.Fatalf("missing query param, url: %s", gotURL)
	}
	if q.Get("first_air_date_year") != "2020" {
		t.Fatalf("missing year param, url: %s", gotURL)
	}
	if q.Get("api_key") != "test-key" {
		t.Fatalf("missing api key, url: %s", gotURL)
	}
	if req.URL.Path != "/3/search/tv" {
		t.Fatalf("unexpected path: %s", req.URL.Path)
	}
}

func TestSearchTVNoYearOmitsParam(t *testing.T) {
	var gotURL string
	client := testClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	})

	if _, err := client.SearchTV(context.Background(), "Frieren", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, gotURL, nil)
	if req.URL.Query().Has("first_air_date_year") {
		t.Fatalf("year param should be absent, url: %s", gotURL)
	}
}

func TestSearchMovieNormalizesFields(t *testing.T) {
	var gotURL string
	client := testClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"results":[{"id":378064,"title":"A Silent Voice","release_date":"2016-09-17","backdrop_path":"/sv.jpg"}]}`), nil
	})

	items, err := client.SearchMovie(context.Background(), "A Silent Voice", 2016)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "A Silent Voice" || items[0].Date != "2016-09-17" {
		t.Fatalf("movie fields not normalized: %+v", items)
	}

	req, _ := http.NewRequest(http.MethodGet, gotURL, nil)
	if req.URL.Query().Get("primary_release_year") != "2016" {
		t.Fatalf("missing movie year param, url: %s", gotURL)
	}
}

func TestTVImagesRequestsEnAndNull(t *testing.T) {
	var gotURL string
	client := testClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"id":1429,"logos":[{"file_path":"/logo.png","width":800,"height":310,"iso_639_1":"en","vote_average":5.3,"vote_count":4}]}`), nil
	})

	logos, err := client.TVImages(context.Background(), 1429)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logos) != 1 || logos[0].FilePath != "/logo.png" || logos[0].Language != "en" {
		t.Fatalf("unexpected logos: %+v", logos)
	}

	req, _ := http.NewRequest(http.MethodGet, gotURL, nil)
	if req.URL.Path != "/3/tv/1429/images" {
		t.Fatalf("unexpected path: %s", req.URL.Path)
	}
	if req.URL.Query().Get("include_image_language") != "en,null" {
		t.Fatalf("missing image language filter, url: %s", gotURL)
	}
}

func TestGetJSONStatusError(t *testing.T) {
	client := testClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"status_message":"rate limited"}`), nil
	})

	if _, err := client.SearchTV(context.Background(), "anything", 0); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestImageURL(t *testing.T) {
	if got := imageURL(tmdbBackdropSize, "/abc.jpg"); got != "https://image.tmdb.org/t/p/original/abc.jpg" {
		t.Fatalf("unexpected url: %s", got)
	}
	if got := optImageURL(tmdbPosterSize, ""); got != "" {
		t.Fatalf("expected empty url for empty path, got %s", got)
	}
	if got := optImageURL(tmdbPosterSize, "/p.jpg"); got != "https://image.tmdb.org/t/p/w500/p.jpg" {
		t.Fatalf("unexpected url: %s", got)
	}
}
